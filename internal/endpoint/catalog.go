package endpoint

import (
	"fmt"
	"log/slog"
	"strings"
)

// Catalog enumerates the active capture and render endpoints once, at
// construction. It is never refreshed; build a new Catalog to observe
// devices that appeared or vanished since.
type Catalog struct {
	platform    Platform
	collections map[Direction]Collection
}

// NewCatalog initializes the platform (once per process) and snapshots both
// directions
func NewCatalog(p Platform) (*Catalog, error) {
	if p == nil {
		return nil, fmt.Errorf("nil audio platform")
	}

	slog.Debug("creating device catalog", "platform", fmt.Sprintf("%T", p))

	if err := p.Initialize(); err != nil {
		slog.Error("audio platform initialization failed", "error", err)
		return nil, fmt.Errorf("audio platform initialization failed: %w", err)
	}

	c := &Catalog{
		platform:    p,
		collections: make(map[Direction]Collection, len(Directions)),
	}

	// render first, matching the enumeration order of the host service
	for _, dir := range []Direction{Render, Capture} {
		col, err := p.Enumerate(dir)
		if err != nil {
			c.Close()
			slog.Error("endpoint enumeration failed", "direction", dir, "error", err)
			return nil, fmt.Errorf("enumerate %s endpoints: %w", dir, err)
		}
		c.collections[dir] = col
	}

	return c, nil
}

// Close releases both snapshots. Devices obtained from the catalog are not
// affected and must be closed by their owners.
func (c *Catalog) Close() error {
	for dir, col := range c.collections {
		col.Release()
		delete(c.collections, dir)
	}
	return nil
}

func (c *Catalog) collection(dir Direction) (Collection, error) {
	col, ok := c.collections[dir]
	if !ok {
		return nil, ErrCatalogClosed
	}
	return col, nil
}

// Count returns the number of active endpoints of dir at snapshot time
func (c *Catalog) Count(dir Direction) (int, error) {
	col, err := c.collection(dir)
	if err != nil {
		return 0, err
	}
	n, err := col.Count()
	if err != nil {
		return 0, fmt.Errorf("count %s endpoints: %w", dir, err)
	}
	return n, nil
}

// ByIndex returns the i-th endpoint of dir in enumeration order
func (c *Catalog) ByIndex(dir Direction, i int) (*Device, error) {
	ep, err := c.item(dir, i)
	if err != nil {
		return nil, err
	}
	return NewDevice(ep)
}

func (c *Catalog) item(dir Direction, i int) (Endpoint, error) {
	n, err := c.Count(dir)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: %s index %d, %d devices", ErrIndexOutOfRange, dir, i, n)
	}

	col, _ := c.collection(dir)
	ep, err := col.Item(i)
	if err != nil {
		return nil, fmt.Errorf("%w: %s index %d: %w", ErrIndexOutOfRange, dir, i, err)
	}
	if ep == nil {
		return nil, ErrInvalidDevice
	}
	return ep, nil
}

// ByName returns the first endpoint of dir, in enumeration order, whose
// friendly name contains needle. The match is case-sensitive. ok is false
// when nothing matches; that is not an error.
func (c *Catalog) ByName(dir Direction, needle string) (dev *Device, ok bool, err error) {
	n, err := c.Count(dir)
	if err != nil {
		return nil, false, err
	}

	for i := 0; i < n; i++ {
		ep, err := c.item(dir, i)
		if err != nil {
			return nil, false, err
		}

		name, err := endpointName(ep)
		if err != nil {
			ep.Release()
			return nil, false, err
		}

		if !strings.Contains(name, needle) {
			ep.Release()
			continue
		}

		slog.Debug("device matched by name", "direction", dir, "needle", needle, "name", name, "index", i)

		dev, err := NewDevice(ep)
		if err != nil {
			return nil, false, err
		}
		return dev, true, nil
	}

	slog.Debug("no device matched by name", "direction", dir, "needle", needle, "candidates", n)
	return nil, false, nil
}

// Default returns the platform default endpoint for dir and role. When the
// platform reports no default but devices exist, the first device is used.
func (c *Catalog) Default(dir Direction, role Role) (*Device, error) {
	ep, err := c.platform.DefaultEndpoint(dir, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrNoDefaultDevice, dir, role, err)
	}
	if ep != nil {
		return NewDevice(ep)
	}

	n, err := c.Count(dir)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s/%s: no default configured and no devices", ErrNoDefaultDevice, dir, role)
	}

	slog.Debug("no default device reported, using first device", "direction", dir, "role", role)
	return c.ByIndex(dir, 0)
}

// FindDefault tries every role in Roles order and returns the first default
// reported. With no default for any role it falls back to the first device.
func (c *Catalog) FindDefault(dir Direction) (*Device, error) {
	for attempt, role := range Roles {
		ep, err := c.platform.DefaultEndpoint(dir, role)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s (attempt %d): %w", ErrNoDefaultDevice, dir, role, attempt+1, err)
		}
		if ep != nil {
			slog.Debug("default device found", "direction", dir, "role", role, "attempt", attempt+1)
			return NewDevice(ep)
		}
	}

	n, err := c.Count(dir)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		slog.Debug("no role reports a default, using first device", "direction", dir)
		return c.ByIndex(dir, 0)
	}

	return nil, fmt.Errorf("%w: %s", ErrNoDeviceAvailable, dir)
}

// List describes every endpoint of dir. IsDefault marks the console default.
func (c *Catalog) List(dir Direction) ([]Info, error) {
	n, err := c.Count(dir)
	if err != nil {
		return nil, err
	}

	defaultID := c.defaultID(dir)

	infos := make([]Info, 0, n)
	for i := 0; i < n; i++ {
		ep, err := c.item(dir, i)
		if err != nil {
			return nil, err
		}

		info := Info{Index: i, Direction: dir}
		info.Name, err = endpointName(ep)
		if err == nil {
			info.ID, err = ep.ID()
		}
		ep.Release()
		if err != nil {
			return nil, fmt.Errorf("describe %s device %d: %w", dir, i, err)
		}

		info.IsDefault = defaultID != "" && info.ID == defaultID
		infos = append(infos, info)
	}

	return infos, nil
}

func (c *Catalog) defaultID(dir Direction) string {
	ep, err := c.platform.DefaultEndpoint(dir, Console)
	if err != nil || ep == nil {
		slog.Debug("no console default for listing", "direction", dir, "error", err)
		return ""
	}
	defer ep.Release()

	id, err := ep.ID()
	if err != nil {
		return ""
	}
	return id
}

// endpointName reads the friendly name through the property store alone,
// without building a Device
func endpointName(ep Endpoint) (string, error) {
	props, err := ep.OpenProperties()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPropertiesUnavailable, err)
	}
	defer props.Release()

	name, err := props.FriendlyName()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPropertiesUnavailable, err)
	}
	return name, nil
}
