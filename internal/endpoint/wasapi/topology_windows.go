//go:build windows

package wasapi

import (
	"fmt"
	"math"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"golang.org/x/sys/windows"

	"soundctl.click/internal/endpoint"
)

var (
	iidDeviceTopology   = ole.NewGUID("{2A07407E-6497-4A18-9787-32F79BD0D98F}")
	iidPart             = ole.NewGUID("{AE2DE0E4-5BCA-4F2D-AA46-5D13F8FDB3A9}")
	iidAudioVolumeLevel = ole.NewGUID("{7FB7B48F-531D-44A2-BCB3-5AD5A134B3DC}")
)

type deviceTopologyVtbl struct {
	ole.IUnknownVtbl
	GetConnectorCount uintptr
	GetConnector      uintptr
	GetSubunitCount   uintptr
	GetSubunit        uintptr
	GetPartById       uintptr
	GetDeviceId       uintptr
	GetSignalPath     uintptr
}

type deviceTopology struct {
	ole.IUnknown
}

func (t *deviceTopology) vtbl() *deviceTopologyVtbl {
	return (*deviceTopologyVtbl)(unsafe.Pointer(t.RawVTable))
}

type connectorVtbl struct {
	ole.IUnknownVtbl
	GetType                   uintptr
	GetDataFlow               uintptr
	ConnectTo                 uintptr
	Disconnect                uintptr
	IsConnected               uintptr
	GetConnectedTo            uintptr
	GetConnectorIdConnectedTo uintptr
	GetDeviceIdConnectedTo    uintptr
}

type comConnector struct {
	ole.IUnknown
}

func (c *comConnector) vtbl() *connectorVtbl {
	return (*connectorVtbl)(unsafe.Pointer(c.RawVTable))
}

type partVtbl struct {
	ole.IUnknownVtbl
	GetName                         uintptr
	GetLocalId                      uintptr
	GetGlobalId                     uintptr
	GetPartType                     uintptr
	GetSubType                      uintptr
	GetControlInterfaceCount        uintptr
	GetControlInterface             uintptr
	EnumPartsIncoming               uintptr
	EnumPartsOutgoing               uintptr
	GetTopologyObject               uintptr
	Activate                        uintptr
	RegisterControlChangeCallback   uintptr
	UnregisterControlChangeCallback uintptr
}

type comPart struct {
	ole.IUnknown
}

func (p *comPart) vtbl() *partVtbl {
	return (*partVtbl)(unsafe.Pointer(p.RawVTable))
}

type audioVolumeLevelVtbl struct {
	ole.IUnknownVtbl
	GetChannelCount     uintptr
	GetLevelRange       uintptr
	GetLevel            uintptr
	SetLevel            uintptr
	SetLevelUniform     uintptr
	SetLevelAllChannels uintptr
}

type comVolumeLevel struct {
	ole.IUnknown
}

func (l *comVolumeLevel) vtbl() *audioVolumeLevelVtbl {
	return (*audioVolumeLevelVtbl)(unsafe.Pointer(l.RawVTable))
}

type topology struct {
	dt *deviceTopology
}

func (t *topology) Connector(i int) (endpoint.Connector, error) {
	var conn *comConnector
	hr, _, _ := syscall.SyscallN(t.dt.vtbl().GetConnector,
		uintptr(unsafe.Pointer(t.dt)),
		uintptr(i),
		uintptr(unsafe.Pointer(&conn)))
	if err := comError(hr); err != nil {
		return nil, fmt.Errorf("connector %d: %w", i, err)
	}
	return &connector{c: conn}, nil
}

func (t *topology) Release() {
	release(&t.dt.IUnknown)
}

type connector struct {
	c *comConnector
}

func (c *connector) ConnectedTo() (endpoint.Connector, error) {
	var other *comConnector
	hr, _, _ := syscall.SyscallN(c.c.vtbl().GetConnectedTo,
		uintptr(unsafe.Pointer(c.c)),
		uintptr(unsafe.Pointer(&other)))
	if err := comError(hr); err != nil {
		return nil, err
	}
	return &connector{c: other}, nil
}

// Part queries the connector for the part interface it also implements
func (c *connector) Part() (endpoint.Part, error) {
	var p *comPart
	hr, _, _ := syscall.SyscallN(c.c.VTable().QueryInterface,
		uintptr(unsafe.Pointer(c.c)),
		uintptr(unsafe.Pointer(iidPart)),
		uintptr(unsafe.Pointer(&p)))
	if err := comError(hr); err != nil {
		return nil, err
	}
	return &part{p: p}, nil
}

func (c *connector) Release() {
	release(&c.c.IUnknown)
}

type part struct {
	p *comPart
}

func (p *part) Name() (string, error) {
	var name *uint16
	hr, _, _ := syscall.SyscallN(p.p.vtbl().GetName,
		uintptr(unsafe.Pointer(p.p)),
		uintptr(unsafe.Pointer(&name)))
	if err := comError(hr); err != nil {
		return "", err
	}
	if name == nil {
		return "", nil
	}
	defer ole.CoTaskMemFree(uintptr(unsafe.Pointer(name)))
	return windows.UTF16PtrToString(name), nil
}

func (p *part) ActivateVolumeLevel() (endpoint.VolumeLevel, error) {
	var level *comVolumeLevel
	hr, _, _ := syscall.SyscallN(p.p.vtbl().Activate,
		uintptr(unsafe.Pointer(p.p)),
		uintptr(wca.CLSCTX_ALL),
		uintptr(unsafe.Pointer(iidAudioVolumeLevel)),
		uintptr(unsafe.Pointer(&level)))
	if err := comError(hr); err != nil {
		return nil, err
	}
	return &volumeLevel{l: level}, nil
}

func (p *part) Release() {
	release(&p.p.IUnknown)
}

type volumeLevel struct {
	l *comVolumeLevel
}

func (l *volumeLevel) ChannelCount() (int, error) {
	var count uint32
	hr, _, _ := syscall.SyscallN(l.l.vtbl().GetChannelCount,
		uintptr(unsafe.Pointer(l.l)),
		uintptr(unsafe.Pointer(&count)))
	if err := comError(hr); err != nil {
		return 0, err
	}
	return int(count), nil
}

func (l *volumeLevel) Level(channel int) (float32, error) {
	var db float32
	hr, _, _ := syscall.SyscallN(l.l.vtbl().GetLevel,
		uintptr(unsafe.Pointer(l.l)),
		uintptr(channel),
		uintptr(unsafe.Pointer(&db)))
	if err := comError(hr); err != nil {
		return 0, err
	}
	return db, nil
}

// SetLevel passes the float in an integer slot. On amd64 the syscall path
// copies the first four arguments into the XMM registers as well.
func (l *volumeLevel) SetLevel(channel int, db float32) error {
	hr, _, _ := syscall.SyscallN(l.l.vtbl().SetLevel,
		uintptr(unsafe.Pointer(l.l)),
		uintptr(channel),
		uintptr(math.Float32bits(db)),
		0)
	return comError(hr)
}

func (l *volumeLevel) Release() {
	release(&l.l.IUnknown)
}
