//go:build windows

package wasapi

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"golang.org/x/sys/windows"

	"soundctl.click/internal/endpoint"
)

var procPropVariantClear = windows.NewLazySystemDLL("ole32.dll").NewProc("PropVariantClear")

// clearPropVariant frees the memory a property store allocated for pv
func clearPropVariant(pv *wca.PROPVARIANT) {
	procPropVariantClear.Call(uintptr(unsafe.Pointer(pv)))
}

type collection struct {
	mmdc *wca.IMMDeviceCollection
}

func (c *collection) Count() (int, error) {
	var count uint32
	if err := c.mmdc.GetCount(&count); err != nil {
		return 0, err
	}
	return int(count), nil
}

func (c *collection) Item(i int) (endpoint.Endpoint, error) {
	var mmd *wca.IMMDevice
	if err := c.mmdc.Item(uint32(i), &mmd); err != nil {
		return nil, err
	}
	return &device{mmd: mmd}, nil
}

func (c *collection) Release() {
	c.mmdc.Release()
}

type device struct {
	mmd *wca.IMMDevice
}

func (d *device) ID() (string, error) {
	var id string
	if err := d.mmd.GetId(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (d *device) OpenProperties() (endpoint.PropertyStore, error) {
	var ps *wca.IPropertyStore
	if err := d.mmd.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return nil, err
	}
	return &propertyStore{ps: ps}, nil
}

func (d *device) ActivateVolume() (endpoint.VolumeControl, error) {
	var aev *wca.IAudioEndpointVolume
	if err := d.mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return nil, err
	}
	return &volumeControl{aev: aev}, nil
}

// ActivateTopology calls IMMDevice::Activate directly since go-wca has no
// IDeviceTopology type
func (d *device) ActivateTopology() (endpoint.Topology, error) {
	var dt *deviceTopology
	hr, _, _ := syscall.SyscallN(
		d.mmd.VTable().Activate,
		uintptr(unsafe.Pointer(d.mmd)),
		uintptr(unsafe.Pointer(iidDeviceTopology)),
		uintptr(wca.CLSCTX_ALL),
		0,
		uintptr(unsafe.Pointer(&dt)))
	if err := comError(hr); err != nil {
		return nil, fmt.Errorf("activate device topology: %w", err)
	}
	return &topology{dt: dt}, nil
}

func (d *device) Release() {
	d.mmd.Release()
}

type propertyStore struct {
	ps *wca.IPropertyStore
}

func (s *propertyStore) FriendlyName() (string, error) {
	var pv wca.PROPVARIANT
	if err := s.ps.GetValue(&wca.PKEY_Device_FriendlyName, &pv); err != nil {
		return "", err
	}
	defer clearPropVariant(&pv)
	return pv.String(), nil
}

func (s *propertyStore) Release() {
	s.ps.Release()
}

type volumeControl struct {
	aev *wca.IAudioEndpointVolume
}

func (v *volumeControl) Volume() (float32, error) {
	var level float32
	if err := v.aev.GetMasterVolumeLevelScalar(&level); err != nil {
		return 0, err
	}
	return level, nil
}

func (v *volumeControl) SetVolume(level float32) error {
	return v.aev.SetMasterVolumeLevelScalar(level, nil)
}

func (v *volumeControl) Muted() (bool, error) {
	var muted bool
	if err := v.aev.GetMute(&muted); err != nil {
		return false, err
	}
	return muted, nil
}

func (v *volumeControl) SetMute(muted bool) error {
	return v.aev.SetMute(muted, nil)
}

func (v *volumeControl) Release() {
	v.aev.Release()
}

// release drops one COM reference
func release(unk *ole.IUnknown) {
	if unk != nil {
		unk.Release()
	}
}
