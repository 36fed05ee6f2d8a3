// Package platform selects and opens the audio backend named in the
// configuration.
package platform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"soundctl.click/internal/endpoint"
	"soundctl.click/internal/endpoint/memory"
	"soundctl.click/internal/endpoint/miniaudio"
	"soundctl.click/internal/endpoint/wasapi"
)

// Backend names
const (
	Auto      = "auto"
	WASAPI    = wasapi.Name
	Miniaudio = miniaudio.Name
	Memory    = "memory"
)

// Factory errors
var (
	ErrInvalidBackendType  = errors.New("invalid backend type")
	ErrBackendNotAvailable = errors.New("audio backend not available")
)

// Constructor builds one backend
type Constructor func() (endpoint.Platform, error)

// Factory opens endpoint platforms by backend name. Each backend is
// constructed at most once per Factory and shared by every later Open, so
// its process-wide initialization runs once no matter how many catalogs
// are built on it.
type Factory struct {
	goos         string
	isWSLFunc    func() bool
	constructors map[string]Constructor

	mu     sync.Mutex
	opened map[string]endpoint.Platform
}

// NewFactory creates a factory for the running system
func NewFactory() *Factory {
	return NewFactoryWithDependencies(runtime.GOOS, IsWSL, DefaultConstructors())
}

// NewFactoryWithDependencies creates a factory with injected platform
// detection and constructors
func NewFactoryWithDependencies(goos string, isWSLFunc func() bool, constructors map[string]Constructor) *Factory {
	return &Factory{
		goos:         goos,
		isWSLFunc:    isWSLFunc,
		constructors: constructors,
		opened:       make(map[string]endpoint.Platform),
	}
}

// DefaultConstructors returns the constructors of every compiled-in backend.
// The memory backend starts with a demonstration device set.
func DefaultConstructors() map[string]Constructor {
	return map[string]Constructor{
		WASAPI:    wasapi.New,
		Miniaudio: miniaudio.New,
		Memory: func() (endpoint.Platform, error) {
			return memory.NewDemo(), nil
		},
	}
}

var defaultFactory = sync.OnceValue(NewFactory)

// Open opens backend on the process-wide default Factory
func Open(backend string) (endpoint.Platform, error) {
	return defaultFactory().Open(backend)
}

// Close releases every backend opened through Open
func Close() error {
	return defaultFactory().Close()
}

// SupportedBackends returns every valid backend name, auto included
func (f *Factory) SupportedBackends() []string {
	names := []string{Auto}
	for name := range f.constructors {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// IsValidBackendType reports whether backend names a known backend. The
// empty string means auto.
func (f *Factory) IsValidBackendType(backend string) bool {
	if backend == "" || backend == Auto {
		return true
	}
	_, ok := f.constructors[backend]
	return ok
}

// Resolve maps auto to the concrete backend for this system
func (f *Factory) Resolve(backend string) (string, error) {
	if backend == "" {
		backend = Auto
	}
	if !f.IsValidBackendType(backend) {
		return "", fmt.Errorf("%w: %s", ErrInvalidBackendType, backend)
	}
	if backend != Auto {
		return backend, nil
	}

	if f.goos == "windows" {
		return WASAPI, nil
	}
	if f.isWSLFunc() {
		slog.Warn("running under WSL: Windows audio endpoints are not reachable, using miniaudio")
	}
	return Miniaudio, nil
}

// Open resolves backend and returns its platform, constructing it on first
// use
func (f *Factory) Open(backend string) (endpoint.Platform, error) {
	name, err := f.Resolve(backend)
	if err != nil {
		slog.Error("invalid audio backend requested", "backend", backend)
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.opened[name]; ok {
		slog.Debug("reusing audio backend", "requested", backend, "resolved", name)
		return p, nil
	}

	slog.Debug("opening audio backend", "requested", backend, "resolved", name)

	p, err := f.constructors[name]()
	if err != nil {
		if errors.Is(err, endpoint.ErrNotSupported) {
			return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotAvailable, name, err)
		}
		return nil, fmt.Errorf("open %s backend: %w", name, err)
	}
	f.opened[name] = p
	return p, nil
}

// Close releases every platform this Factory opened. A later Open
// constructs a fresh one.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, p := range f.opened {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s backend: %w", name, err))
			}
		}
		delete(f.opened, name)
	}
	return errors.Join(errs...)
}
