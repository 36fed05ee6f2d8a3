//go:build cgo

package miniaudio

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"

	"soundctl.click/internal/endpoint"
)

// Platform is the miniaudio endpoint.Platform
type Platform struct {
	once endpoint.Once

	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

// New creates the platform. The miniaudio context is created by Initialize.
func New() (endpoint.Platform, error) {
	return &Platform{}, nil
}

// Initialize implements endpoint.Platform
func (p *Platform) Initialize() error {
	return p.once.Do(func() error {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
			slog.Debug("malgo internal", "message", message)
		})
		if err != nil {
			slog.Error("failed to initialize miniaudio context", "error", err)
			return fmt.Errorf("initialize miniaudio context: %w", err)
		}

		p.mu.Lock()
		p.ctx = ctx
		p.mu.Unlock()

		slog.Debug("miniaudio platform initialized")
		return nil
	})
}

// Close releases the miniaudio context
func (p *Platform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil
	}
	err := p.ctx.Uninit()
	p.ctx.Free()
	p.ctx = nil
	return err
}

func (p *Platform) devices(dir endpoint.Direction) ([]malgo.DeviceInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil, fmt.Errorf("miniaudio platform not initialized")
	}
	devices, err := p.ctx.Devices(deviceType(dir))
	if err != nil {
		return nil, fmt.Errorf("list %s devices: %w", dir, err)
	}
	return devices, nil
}

// Enumerate implements endpoint.Platform
func (p *Platform) Enumerate(dir endpoint.Direction) (endpoint.Collection, error) {
	devices, err := p.devices(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("miniaudio devices enumerated", "direction", dir, "count", len(devices))
	return &collection{devices: devices}, nil
}

// DefaultEndpoint implements endpoint.Platform. miniaudio knows a single
// default per direction, which answers for every role.
func (p *Platform) DefaultEndpoint(dir endpoint.Direction, role endpoint.Role) (endpoint.Endpoint, error) {
	devices, err := p.devices(dir)
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.IsDefault != 0 {
			return &device{info: dev}, nil
		}
	}
	return nil, nil
}

func deviceType(dir endpoint.Direction) malgo.DeviceType {
	if dir == endpoint.Render {
		return malgo.Playback
	}
	return malgo.Capture
}

type collection struct {
	devices []malgo.DeviceInfo
}

func (c *collection) Count() (int, error) {
	return len(c.devices), nil
}

func (c *collection) Item(i int) (endpoint.Endpoint, error) {
	if i < 0 || i >= len(c.devices) {
		return nil, fmt.Errorf("item %d of %d", i, len(c.devices))
	}
	return &device{info: c.devices[i]}, nil
}

func (c *collection) Release() {}

type device struct {
	info malgo.DeviceInfo
}

// ID returns the backend device id, hex encoded without trailing padding
func (d *device) ID() (string, error) {
	return hex.EncodeToString(bytes.TrimRight(d.info.ID[:], "\x00")), nil
}

func (d *device) OpenProperties() (endpoint.PropertyStore, error) {
	return properties{name: d.info.Name()}, nil
}

func (d *device) ActivateVolume() (endpoint.VolumeControl, error) {
	return nil, fmt.Errorf("%w: master volume on %s", endpoint.ErrNotSupported, Name)
}

func (d *device) ActivateTopology() (endpoint.Topology, error) {
	return nil, fmt.Errorf("%w: device topology on %s", endpoint.ErrNotSupported, Name)
}

func (d *device) Release() {}

type properties struct {
	name string
}

func (p properties) FriendlyName() (string, error) {
	return p.name, nil
}

func (p properties) Release() {}
