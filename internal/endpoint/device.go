package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
)

// Device is one audio endpoint. It owns its endpoint, property store, master
// volume and topology handles; Close releases all four exactly once. A
// Device must not be copied, share it by pointer.
type Device struct {
	endpoint Endpoint
	props    PropertyStore
	volume   VolumeControl
	topology Topology
}

// NewDevice takes ownership of ep and acquires its property store, volume
// control and topology, in that order. On failure every handle acquired so
// far, ep included, is released.
func NewDevice(ep Endpoint) (*Device, error) {
	if ep == nil {
		return nil, ErrInvalidDevice
	}

	d := &Device{endpoint: ep}

	props, err := ep.OpenProperties()
	if err != nil {
		d.release()
		return nil, fmt.Errorf("%w: %w", ErrPropertiesUnavailable, err)
	}
	d.props = props

	volume, err := ep.ActivateVolume()
	if err != nil {
		d.release()
		return nil, fmt.Errorf("%w: %w", ErrVolumeControlUnavailable, err)
	}
	d.volume = volume

	topology, err := ep.ActivateTopology()
	if err != nil {
		d.release()
		return nil, fmt.Errorf("%w: %w", ErrTopologyUnavailable, err)
	}
	d.topology = topology

	return d, nil
}

func (d *Device) release() {
	if d.volume != nil {
		d.volume.Release()
		d.volume = nil
	}
	if d.topology != nil {
		d.topology.Release()
		d.topology = nil
	}
	if d.props != nil {
		d.props.Release()
		d.props = nil
	}
	if d.endpoint != nil {
		d.endpoint.Release()
		d.endpoint = nil
	}
}

// Close releases every handle held by the device. Closing twice is a no-op.
func (d *Device) Close() error {
	if d == nil {
		return nil
	}
	d.release()
	return nil
}

// Valid reports whether the device still holds its handles
func (d *Device) Valid() bool {
	return d != nil && d.endpoint != nil
}

// ID returns the platform endpoint identifier
func (d *Device) ID() (string, error) {
	if !d.Valid() {
		return "", ErrInvalidDevice
	}
	return d.endpoint.ID()
}

// FriendlyName returns the human-readable device name. An invalid device
// yields an empty name and ErrInvalidDevice.
func (d *Device) FriendlyName() (string, error) {
	if !d.Valid() {
		return "", ErrInvalidDevice
	}
	name, err := d.props.FriendlyName()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPropertiesUnavailable, err)
	}
	return name, nil
}

// Volume returns the master volume scalar in [0, 1]
func (d *Device) Volume() (float64, error) {
	if !d.Valid() {
		return 0, ErrInvalidDevice
	}
	v, err := d.volume.Volume()
	if err != nil {
		return 0, fmt.Errorf("get master volume: %w", err)
	}
	return float64(v), nil
}

// SetVolume sets the master volume scalar. Values outside [0, 1] are ignored
// without error; callers validate user input first.
func (d *Device) SetVolume(v float64) error {
	if !d.Valid() {
		return ErrInvalidDevice
	}
	if !validScalar(v) {
		slog.Debug("ignoring out of range master volume", "volume", v)
		return nil
	}
	if err := d.volume.SetVolume(float32(v)); err != nil {
		return fmt.Errorf("set master volume: %w", err)
	}
	return nil
}

// Muted returns the master mute state
func (d *Device) Muted() (bool, error) {
	if !d.Valid() {
		return false, ErrInvalidDevice
	}
	muted, err := d.volume.Muted()
	if err != nil {
		return false, fmt.Errorf("get mute: %w", err)
	}
	return muted, nil
}

// SetMute sets the master mute state
func (d *Device) SetMute(muted bool) error {
	if !d.Valid() {
		return ErrInvalidDevice
	}
	if err := d.volume.SetMute(muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

// UnderlyingVolume walks the topology from connector index connector to the
// device-side part it connects to and returns that part's volume node.
// ErrNoVolumeInterface means the part exists but is not a volume node.
func (d *Device) UnderlyingVolume(connector int) (*VolumeNode, error) {
	if !d.Valid() {
		return nil, ErrInvalidDevice
	}

	endpointConn, err := d.topology.Connector(connector)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %w", ErrConnectorUnavailable, connector, err)
	}

	deviceConn, err := endpointConn.ConnectedTo()
	endpointConn.Release()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionUnavailable, err)
	}

	part, err := deviceConn.Part()
	deviceConn.Release()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPartUnavailable, err)
	}
	defer part.Release()

	name, err := part.Name()
	if err != nil {
		// the name only labels the node
		slog.Debug("topology part has no readable name", "connector", connector, "error", err)
		name = ""
	}

	level, err := part.ActivateVolumeLevel()
	if err != nil {
		if errors.Is(err, ErrNoInterface) {
			return nil, fmt.Errorf("%w: connector %d (%s)", ErrNoVolumeInterface, connector, name)
		}
		return nil, fmt.Errorf("%w: activate volume level: %w", ErrPartUnavailable, err)
	}

	slog.Debug("topology volume node resolved", "connector", connector, "part", name)
	return newVolumeNode(level, name)
}
