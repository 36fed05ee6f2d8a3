package endpoint

import "errors"

// Construction errors
var (
	ErrInvalidDevice            = errors.New("invalid device")
	ErrPropertiesUnavailable    = errors.New("cannot load device properties")
	ErrVolumeControlUnavailable = errors.New("cannot load device volume control")
	ErrTopologyUnavailable      = errors.New("cannot load device topology")
)

// Lookup errors
var (
	ErrIndexOutOfRange   = errors.New("device index out of range")
	ErrNoDefaultDevice   = errors.New("failed to get default device")
	ErrNoDeviceAvailable = errors.New("no device available")
)

// Topology walk errors. ErrNoVolumeInterface is an expected outcome: not
// every part carries a volume control.
var (
	ErrConnectorUnavailable  = errors.New("cannot get topology connector")
	ErrConnectionUnavailable = errors.New("cannot get connected device connector")
	ErrPartUnavailable       = errors.New("cannot query part interface")
	ErrNoVolumeInterface     = errors.New("part has no volume interface")
)

// Runtime control errors
var (
	ErrChannelQueryFailed = errors.New("failed to get channel count")
	ErrLevelUnavailable   = errors.New("failed to access channel level")
)

// Platform errors. Backends return these so the core can tell a missing
// capability apart from a malfunction.
var (
	ErrNotSupported  = errors.New("operation not supported by audio backend")
	ErrNoInterface   = errors.New("interface not available")
	ErrCatalogClosed = errors.New("device catalog is closed")
)
