package endpoint

import "sync"

// Platform is the host audio service. Implementations expose the same
// capability surface on every OS: enumerate, default lookup, property read,
// master volume control and topology walk.
type Platform interface {
	// Initialize performs process-wide setup. It is called by every Catalog
	// construction; implementations guard the real work with a Once.
	Initialize() error

	// Enumerate returns a snapshot of the active endpoints of one direction
	Enumerate(dir Direction) (Collection, error)

	// DefaultEndpoint returns the default endpoint for dir and role. A nil
	// Endpoint with a nil error means the platform has no default configured.
	DefaultEndpoint(dir Direction, role Role) (Endpoint, error)
}

// Collection is an enumeration snapshot
type Collection interface {
	Count() (int, error)
	// Item returns a new reference the caller must Release
	Item(i int) (Endpoint, error)
	Release()
}

// Endpoint is one platform device handle
type Endpoint interface {
	ID() (string, error)
	OpenProperties() (PropertyStore, error)
	ActivateVolume() (VolumeControl, error)
	ActivateTopology() (Topology, error)
	Release()
}

// PropertyStore reads endpoint properties
type PropertyStore interface {
	FriendlyName() (string, error)
	Release()
}

// VolumeControl is the master volume and mute of an endpoint
type VolumeControl interface {
	Volume() (float32, error)
	SetVolume(v float32) error
	Muted() (bool, error)
	SetMute(muted bool) error
	Release()
}

// Topology is the internal signal graph of an endpoint
type Topology interface {
	Connector(i int) (Connector, error)
	Release()
}

// Connector is a topology connector
type Connector interface {
	// ConnectedTo returns the device-side connector this one is connected to
	ConnectedTo() (Connector, error)
	// Part reinterprets the connector as a topology part
	Part() (Part, error)
	Release()
}

// Part is a topology node
type Part interface {
	Name() (string, error)
	// ActivateVolumeLevel returns ErrNoInterface when the part carries no
	// volume control
	ActivateVolumeLevel() (VolumeLevel, error)
	Release()
}

// VolumeLevel is a per-channel decibel control
type VolumeLevel interface {
	ChannelCount() (int, error)
	Level(channel int) (float32, error)
	SetLevel(channel int, db float32) error
	Release()
}

// Once runs a process-wide initializer until it first succeeds. Later calls
// are no-ops; a failed attempt leaves the guard open for the next caller.
type Once struct {
	mu   sync.Mutex
	done bool
}

// Do runs f unless a previous call already succeeded
func (o *Once) Do(f func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done {
		return nil
	}
	if err := f(); err != nil {
		return err
	}
	o.done = true
	return nil
}

// Done reports whether an initializer has succeeded
func (o *Once) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}
