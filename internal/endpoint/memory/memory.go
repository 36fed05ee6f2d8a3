// Package memory provides an in-process audio platform with programmable
// endpoints. It backs the "memory" backend and the tests of every package
// built on the endpoint model.
package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"soundctl.click/internal/endpoint"
)

// ErrInjected is a convenience failure for tests
var ErrInjected = errors.New("injected failure")

// Part is a topology node. Levels holds one decibel value per channel.
type Part struct {
	Name     string
	Levels   []float32
	NoVolume bool

	NameErr     error
	ActivateErr error
	CountErr    error
	LevelErr    error
}

// Connector is an endpoint-side connector wired to a device-side part
type Connector struct {
	Part *Part

	ConnectErr error
	PartErr    error
}

// Device is a programmable endpoint
type Device struct {
	ID     string
	Name   string
	Volume float32
	Muted  bool

	Connectors []*Connector

	PropertiesErr error
	NameErr       error
	VolumeErr     error
	TopologyErr   error
	ControlErr    error
}

// Platform is an in-memory endpoint.Platform
type Platform struct {
	mu sync.Mutex

	once      endpoint.Once
	InitErr   error
	initCalls int

	devices     map[endpoint.Direction][]*Device
	defaults    map[endpoint.Direction]map[endpoint.Role]string
	defaultErrs map[endpoint.Direction]error
	enumErr     error

	open           int
	doubleReleases int
}

// New creates an empty platform
func New() *Platform {
	return &Platform{
		devices:     make(map[endpoint.Direction][]*Device),
		defaults:    make(map[endpoint.Direction]map[endpoint.Role]string),
		defaultErrs: make(map[endpoint.Direction]error),
	}
}

// NewDemo creates a platform with a small, plausible device set. The memory
// backend of the CLI uses it for dry runs.
func NewDemo() *Platform {
	p := New()
	p.Add(endpoint.Render, &Device{
		ID: "{0.0.0.00000000}.{speakers}", Name: "Speakers (Realtek High Definition Audio)", Volume: 0.5,
		Connectors: []*Connector{{Part: &Part{Name: "Master Volume", Levels: []float32{-6, -6}}}},
	})
	p.Add(endpoint.Render, &Device{
		ID: "{0.0.0.00000000}.{yeti-out}", Name: "Headphones (Yeti Stereo Microphone)", Volume: 0.35,
	})
	p.Add(endpoint.Capture, &Device{
		ID: "{0.0.1.00000000}.{yeti-in}", Name: "Microphone (Yeti Stereo Microphone)", Volume: 0.8,
		Connectors: []*Connector{{Part: &Part{Name: "Microphone Boost", Levels: []float32{10, 10}}}},
	})
	p.Add(endpoint.Capture, &Device{
		ID: "{0.0.1.00000000}.{line-in}", Name: "Line In (Realtek High Definition Audio)", Volume: 1.0,
	})
	for _, role := range endpoint.Roles {
		p.SetDefault(endpoint.Render, role, "{0.0.0.00000000}.{speakers}")
		p.SetDefault(endpoint.Capture, role, "{0.0.1.00000000}.{yeti-in}")
	}
	return p
}

// Add appends d to the endpoints of dir and returns it
func (p *Platform) Add(dir endpoint.Direction, d *Device) *Device {
	p.mu.Lock()
	defer p.mu.Unlock()

	if d.ID == "" {
		d.ID = fmt.Sprintf("%s-%d", dir, len(p.devices[dir]))
	}
	p.devices[dir] = append(p.devices[dir], d)
	return d
}

// SetDefault marks the device with id as the default of dir for role. An
// empty id clears the default.
func (p *Platform) SetDefault(dir endpoint.Direction, role endpoint.Role, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.defaults[dir] == nil {
		p.defaults[dir] = make(map[endpoint.Role]string)
	}
	if id == "" {
		delete(p.defaults[dir], role)
		return
	}
	p.defaults[dir][role] = id
}

// Lookup returns the device of dir with id, or nil
func (p *Platform) Lookup(dir endpoint.Direction, id string) *Device {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, d := range p.devices[dir] {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// FailDefault makes every default lookup of dir fail with err
func (p *Platform) FailDefault(dir endpoint.Direction, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultErrs[dir] = err
}

// FailEnumerate makes enumeration fail with err
func (p *Platform) FailEnumerate(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enumErr = err
}

// InitCalls returns how many times the process-wide initializer ran
func (p *Platform) InitCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initCalls
}

// Outstanding returns the number of handles acquired and not yet released
func (p *Platform) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// DoubleReleases returns how many handles were released more than once
func (p *Platform) DoubleReleases() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doubleReleases
}

// Initialize implements endpoint.Platform
func (p *Platform) Initialize() error {
	return p.once.Do(func() error {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.initCalls++
		if p.InitErr != nil {
			return p.InitErr
		}
		slog.Debug("memory audio platform initialized")
		return nil
	})
}

// Enumerate implements endpoint.Platform
func (p *Platform) Enumerate(dir endpoint.Direction) (endpoint.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enumErr != nil {
		return nil, p.enumErr
	}

	snapshot := make([]*Device, len(p.devices[dir]))
	copy(snapshot, p.devices[dir])

	col := &collection{devices: snapshot}
	col.handle = p.acquire()
	return col, nil
}

// DefaultEndpoint implements endpoint.Platform
func (p *Platform) DefaultEndpoint(dir endpoint.Direction, role endpoint.Role) (endpoint.Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.defaultErrs[dir]; err != nil {
		return nil, err
	}

	id, ok := p.defaults[dir][role]
	if !ok {
		return nil, nil
	}
	for _, d := range p.devices[dir] {
		if d.ID == id {
			return &endpointHandle{device: d, handle: p.acquire()}, nil
		}
	}
	return nil, nil
}

// handle tracks one acquired reference
type handle struct {
	p        *Platform
	released bool
}

// acquire must be called with p.mu held
func (p *Platform) acquire() *handle {
	p.open++
	return &handle{p: p}
}

func (h *handle) Release() {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()

	if h.released {
		h.p.doubleReleases++
		return
	}
	h.released = true
	h.p.open--
}

func (h *handle) lock() func() {
	h.p.mu.Lock()
	return h.p.mu.Unlock
}

func (h *handle) newHandle() *handle {
	defer h.lock()()
	return h.p.acquire()
}

type collection struct {
	*handle
	devices []*Device
}

func (c *collection) Count() (int, error) {
	return len(c.devices), nil
}

func (c *collection) Item(i int) (endpoint.Endpoint, error) {
	if i < 0 || i >= len(c.devices) {
		return nil, fmt.Errorf("item %d of %d", i, len(c.devices))
	}
	return &endpointHandle{device: c.devices[i], handle: c.newHandle()}, nil
}

type endpointHandle struct {
	*handle
	device *Device
}

func (e *endpointHandle) ID() (string, error) {
	return e.device.ID, nil
}

func (e *endpointHandle) OpenProperties() (endpoint.PropertyStore, error) {
	if e.device.PropertiesErr != nil {
		return nil, e.device.PropertiesErr
	}
	return &propertyStore{device: e.device, handle: e.newHandle()}, nil
}

func (e *endpointHandle) ActivateVolume() (endpoint.VolumeControl, error) {
	if e.device.VolumeErr != nil {
		return nil, e.device.VolumeErr
	}
	return &volumeControl{device: e.device, handle: e.newHandle()}, nil
}

func (e *endpointHandle) ActivateTopology() (endpoint.Topology, error) {
	if e.device.TopologyErr != nil {
		return nil, e.device.TopologyErr
	}
	return &topology{device: e.device, handle: e.newHandle()}, nil
}

type propertyStore struct {
	*handle
	device *Device
}

func (s *propertyStore) FriendlyName() (string, error) {
	if s.device.NameErr != nil {
		return "", s.device.NameErr
	}
	return s.device.Name, nil
}

type volumeControl struct {
	*handle
	device *Device
}

func (v *volumeControl) Volume() (float32, error) {
	defer v.lock()()
	if v.device.ControlErr != nil {
		return 0, v.device.ControlErr
	}
	return v.device.Volume, nil
}

func (v *volumeControl) SetVolume(level float32) error {
	defer v.lock()()
	if v.device.ControlErr != nil {
		return v.device.ControlErr
	}
	v.device.Volume = level
	return nil
}

func (v *volumeControl) Muted() (bool, error) {
	defer v.lock()()
	if v.device.ControlErr != nil {
		return false, v.device.ControlErr
	}
	return v.device.Muted, nil
}

func (v *volumeControl) SetMute(muted bool) error {
	defer v.lock()()
	if v.device.ControlErr != nil {
		return v.device.ControlErr
	}
	v.device.Muted = muted
	return nil
}

type topology struct {
	*handle
	device *Device
}

func (t *topology) Connector(i int) (endpoint.Connector, error) {
	if i < 0 || i >= len(t.device.Connectors) {
		return nil, fmt.Errorf("connector %d of %d", i, len(t.device.Connectors))
	}
	return &connector{conn: t.device.Connectors[i], handle: t.newHandle()}, nil
}

// connector is either the endpoint side (deviceSide false) or the device side
// of a Connector
type connector struct {
	*handle
	conn       *Connector
	deviceSide bool
}

func (c *connector) ConnectedTo() (endpoint.Connector, error) {
	if c.conn.ConnectErr != nil {
		return nil, c.conn.ConnectErr
	}
	return &connector{conn: c.conn, deviceSide: !c.deviceSide, handle: c.newHandle()}, nil
}

func (c *connector) Part() (endpoint.Part, error) {
	if c.conn.PartErr != nil {
		return nil, c.conn.PartErr
	}
	if !c.deviceSide || c.conn.Part == nil {
		return nil, endpoint.ErrNoInterface
	}
	return &part{part: c.conn.Part, handle: c.newHandle()}, nil
}

type part struct {
	*handle
	part *Part
}

func (p *part) Name() (string, error) {
	if p.part.NameErr != nil {
		return "", p.part.NameErr
	}
	return p.part.Name, nil
}

func (p *part) ActivateVolumeLevel() (endpoint.VolumeLevel, error) {
	if p.part.ActivateErr != nil {
		return nil, p.part.ActivateErr
	}
	if p.part.NoVolume {
		return nil, endpoint.ErrNoInterface
	}
	return &volumeLevel{part: p.part, handle: p.newHandle()}, nil
}

type volumeLevel struct {
	*handle
	part *Part
}

func (l *volumeLevel) ChannelCount() (int, error) {
	defer l.lock()()
	if l.part.CountErr != nil {
		return 0, l.part.CountErr
	}
	return len(l.part.Levels), nil
}

func (l *volumeLevel) Level(channel int) (float32, error) {
	defer l.lock()()
	if l.part.LevelErr != nil {
		return 0, l.part.LevelErr
	}
	if channel < 0 || channel >= len(l.part.Levels) {
		return 0, fmt.Errorf("channel %d of %d", channel, len(l.part.Levels))
	}
	return l.part.Levels[channel], nil
}

func (l *volumeLevel) SetLevel(channel int, db float32) error {
	defer l.lock()()
	if l.part.LevelErr != nil {
		return l.part.LevelErr
	}
	if channel < 0 || channel >= len(l.part.Levels) {
		return fmt.Errorf("channel %d of %d", channel, len(l.part.Levels))
	}
	l.part.Levels[channel] = db
	return nil
}
