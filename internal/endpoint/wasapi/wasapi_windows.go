//go:build windows

package wasapi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"

	"soundctl.click/internal/endpoint"
)

const (
	hrSFalse       = 0x00000001
	hrENoInterface = 0x80004002
	hrENotFound    = 0x80070490
)

// The COM apartment and the device enumerator belong to the process, not
// to a Platform value: every Platform shares them, and they live until exit.
var (
	comInit endpoint.Once

	enumeratorMu sync.Mutex
	enumerator   *wca.IMMDeviceEnumerator
)

// Platform is the Core Audio endpoint.Platform. The COM runtime is entered
// in the multithreaded apartment, so handles may be used from any goroutine.
type Platform struct{}

// New creates the platform. COM is not touched until Initialize.
func New() (endpoint.Platform, error) {
	return &Platform{}, nil
}

// Initialize enters COM and creates the device enumerator. It runs once per
// process across all Platform values; a failed attempt is retried by the
// next caller.
func (p *Platform) Initialize() error {
	return comInit.Do(func() error {
		if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil && hresult(err) != hrSFalse {
			return fmt.Errorf("initialize COM: %w", err)
		}

		var mmde *wca.IMMDeviceEnumerator
		if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
			return fmt.Errorf("create device enumerator: %w", err)
		}

		enumeratorMu.Lock()
		enumerator = mmde
		enumeratorMu.Unlock()

		slog.Debug("core audio platform initialized")
		return nil
	})
}

func (p *Platform) deviceEnumerator() (*wca.IMMDeviceEnumerator, error) {
	enumeratorMu.Lock()
	defer enumeratorMu.Unlock()
	if enumerator == nil {
		return nil, errors.New("core audio platform not initialized")
	}
	return enumerator, nil
}

// Enumerate implements endpoint.Platform
func (p *Platform) Enumerate(dir endpoint.Direction) (endpoint.Collection, error) {
	mmde, err := p.deviceEnumerator()
	if err != nil {
		return nil, err
	}

	var mmdc *wca.IMMDeviceCollection
	if err := mmde.EnumAudioEndpoints(dataFlow(dir), wca.DEVICE_STATE_ACTIVE, &mmdc); err != nil {
		return nil, fmt.Errorf("enumerate audio endpoints: %w", err)
	}
	return &collection{mmdc: mmdc}, nil
}

// DefaultEndpoint implements endpoint.Platform. Element not found means no
// default is configured and yields a nil endpoint without error.
func (p *Platform) DefaultEndpoint(dir endpoint.Direction, role endpoint.Role) (endpoint.Endpoint, error) {
	mmde, err := p.deviceEnumerator()
	if err != nil {
		return nil, err
	}

	var mmd *wca.IMMDevice
	if err := mmde.GetDefaultAudioEndpoint(dataFlow(dir), deviceRole(role), &mmd); err != nil {
		if hresult(err) == hrENotFound {
			slog.Debug("no default audio endpoint", "direction", dir, "role", role)
			return nil, nil
		}
		return nil, fmt.Errorf("get default audio endpoint: %w", err)
	}
	return &device{mmd: mmd}, nil
}

func dataFlow(dir endpoint.Direction) uint32 {
	if dir == endpoint.Render {
		return wca.ERender
	}
	return wca.ECapture
}

func deviceRole(role endpoint.Role) uint32 {
	switch role {
	case endpoint.Multimedia:
		return wca.EMultimedia
	case endpoint.Communications:
		return wca.ECommunications
	default:
		return wca.EConsole
	}
}

// hresult extracts the HRESULT of a COM error, or 0
func hresult(err error) uintptr {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return oleErr.Code()
	}
	return 0
}

// comError converts a raw HRESULT from a vtable call
func comError(hr uintptr) error {
	if hr == 0 {
		return nil
	}
	if hr == hrENoInterface {
		return fmt.Errorf("%w: %w", endpoint.ErrNoInterface, ole.NewError(hr))
	}
	return ole.NewError(hr)
}
