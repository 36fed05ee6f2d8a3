package endpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundctl.click/internal/endpoint"
	"soundctl.click/internal/endpoint/memory"
)

func newCatalog(t *testing.T, p *memory.Platform) *endpoint.Catalog {
	t.Helper()
	c, err := endpoint.NewCatalog(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewCatalogInitializesOnce(t *testing.T) {
	p := memory.NewDemo()

	for i := 0; i < 3; i++ {
		c, err := endpoint.NewCatalog(p)
		require.NoError(t, err)
		require.NoError(t, c.Close())
	}

	assert.Equal(t, 1, p.InitCalls())
	assert.Zero(t, p.Outstanding())
}

func TestNewCatalogInitFailure(t *testing.T) {
	p := memory.New()
	p.InitErr = memory.ErrInjected

	_, err := endpoint.NewCatalog(p)
	require.ErrorIs(t, err, memory.ErrInjected)

	p.InitErr = nil
	c, err := endpoint.NewCatalog(p)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Equal(t, 2, p.InitCalls(), "failed initialization is retried")
}

func TestNewCatalogEnumerateFailure(t *testing.T) {
	p := memory.NewDemo()
	p.FailEnumerate(memory.ErrInjected)

	_, err := endpoint.NewCatalog(p)
	require.ErrorIs(t, err, memory.ErrInjected)
	assert.Zero(t, p.Outstanding())
}

func TestCatalogIsASnapshot(t *testing.T) {
	p := memory.NewDemo()
	c := newCatalog(t, p)

	before, err := c.Count(endpoint.Render)
	require.NoError(t, err)

	p.Add(endpoint.Render, &memory.Device{Name: "HDMI Output"})

	after, err := c.Count(endpoint.Render)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCatalogClosed(t *testing.T) {
	c, err := endpoint.NewCatalog(memory.NewDemo())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Count(endpoint.Capture)
	assert.ErrorIs(t, err, endpoint.ErrCatalogClosed)
}

func TestByIndex(t *testing.T) {
	p := memory.NewDemo()
	c := newCatalog(t, p)

	dev, err := c.ByIndex(endpoint.Capture, 1)
	require.NoError(t, err)
	name, err := dev.FriendlyName()
	require.NoError(t, err)
	assert.Equal(t, "Line In (Realtek High Definition Audio)", name)
	require.NoError(t, dev.Close())

	_, err = c.ByIndex(endpoint.Capture, 2)
	assert.ErrorIs(t, err, endpoint.ErrIndexOutOfRange)
	_, err = c.ByIndex(endpoint.Capture, -1)
	assert.ErrorIs(t, err, endpoint.ErrIndexOutOfRange)

	require.NoError(t, c.Close())
	assert.Zero(t, p.Outstanding())
}

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		dir      endpoint.Direction
		needle   string
		want     string
		wantFind bool
	}{
		{"capture substring", endpoint.Capture, "Yeti", "Microphone (Yeti Stereo Microphone)", true},
		{"render substring", endpoint.Render, "Yeti", "Headphones (Yeti Stereo Microphone)", true},
		{"first in enumeration order", endpoint.Render, "Realtek", "Speakers (Realtek High Definition Audio)", true},
		{"case sensitive", endpoint.Capture, "yeti", "", false},
		{"no match", endpoint.Capture, "Scarlett", "", false},
		{"empty needle matches first", endpoint.Capture, "", "Microphone (Yeti Stereo Microphone)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := memory.NewDemo()
			c := newCatalog(t, p)

			dev, ok, err := c.ByName(tt.dir, tt.needle)
			require.NoError(t, err)
			require.Equal(t, tt.wantFind, ok)
			if !ok {
				assert.Nil(t, dev)
				require.NoError(t, c.Close())
				assert.Zero(t, p.Outstanding(), "non-matching endpoints must be released")
				return
			}

			name, err := dev.FriendlyName()
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)

			require.NoError(t, dev.Close())
			require.NoError(t, c.Close())
			assert.Zero(t, p.Outstanding())
		})
	}
}

func TestByNameIsDeterministic(t *testing.T) {
	c := newCatalog(t, memory.NewDemo())

	var ids []string
	for i := 0; i < 5; i++ {
		dev, ok, err := c.ByName(endpoint.Render, "Audio")
		require.NoError(t, err)
		require.True(t, ok)
		id, err := dev.ID()
		require.NoError(t, err)
		ids = append(ids, id)
		require.NoError(t, dev.Close())
	}

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestByNamePropertyFailure(t *testing.T) {
	p := memory.New()
	p.Add(endpoint.Capture, &memory.Device{Name: "Broken", PropertiesErr: memory.ErrInjected})
	c := newCatalog(t, p)

	_, ok, err := c.ByName(endpoint.Capture, "Broken")
	assert.False(t, ok)
	assert.ErrorIs(t, err, endpoint.ErrPropertiesUnavailable)
}

func TestDefault(t *testing.T) {
	p := memory.NewDemo()
	c := newCatalog(t, p)

	dev, err := c.Default(endpoint.Capture, endpoint.Console)
	require.NoError(t, err)
	defer dev.Close()

	id, err := dev.ID()
	require.NoError(t, err)
	assert.Equal(t, "{0.0.1.00000000}.{yeti-in}", id)
}

func TestDefaultFallsBackToFirstDeviceInBothDirections(t *testing.T) {
	for _, dir := range endpoint.Directions {
		t.Run(dir.String(), func(t *testing.T) {
			p := memory.NewDemo()
			for _, role := range endpoint.Roles {
				p.SetDefault(dir, role, "")
			}
			c := newCatalog(t, p)

			dev, err := c.Default(dir, endpoint.Multimedia)
			require.NoError(t, err)
			defer dev.Close()

			first, err := c.ByIndex(dir, 0)
			require.NoError(t, err)
			defer first.Close()

			got, _ := dev.ID()
			want, _ := first.ID()
			assert.Equal(t, want, got)
		})
	}
}

func TestDefaultWithoutDevices(t *testing.T) {
	c := newCatalog(t, memory.New())

	_, err := c.Default(endpoint.Render, endpoint.Console)
	assert.ErrorIs(t, err, endpoint.ErrNoDefaultDevice)
}

func TestDefaultPlatformError(t *testing.T) {
	p := memory.NewDemo()
	p.FailDefault(endpoint.Render, memory.ErrInjected)
	c := newCatalog(t, p)

	_, err := c.Default(endpoint.Render, endpoint.Communications)
	assert.ErrorIs(t, err, endpoint.ErrNoDefaultDevice)
	assert.ErrorIs(t, err, memory.ErrInjected)
}

func TestFindDefaultTriesRolesInOrder(t *testing.T) {
	p := memory.New()
	p.Add(endpoint.Render, &memory.Device{ID: "speakers", Name: "Speakers"})
	p.Add(endpoint.Render, &memory.Device{ID: "headset", Name: "Headset"})
	p.SetDefault(endpoint.Render, endpoint.Communications, "headset")
	c := newCatalog(t, p)

	dev, err := c.FindDefault(endpoint.Render)
	require.NoError(t, err)
	defer dev.Close()

	id, err := dev.ID()
	require.NoError(t, err)
	assert.Equal(t, "headset", id)
}

func TestFindDefaultFallsBackToFirstDevice(t *testing.T) {
	p := memory.New()
	p.Add(endpoint.Capture, &memory.Device{ID: "only", Name: "Only Mic"})
	c := newCatalog(t, p)

	dev, err := c.FindDefault(endpoint.Capture)
	require.NoError(t, err)
	defer dev.Close()

	id, _ := dev.ID()
	assert.Equal(t, "only", id)
}

func TestFindDefaultNoDevice(t *testing.T) {
	c := newCatalog(t, memory.New())

	_, err := c.FindDefault(endpoint.Capture)
	assert.ErrorIs(t, err, endpoint.ErrNoDeviceAvailable)
}

func TestList(t *testing.T) {
	p := memory.NewDemo()
	c := newCatalog(t, p)

	infos, err := c.List(endpoint.Render)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, 0, infos[0].Index)
	assert.Equal(t, "Speakers (Realtek High Definition Audio)", infos[0].Name)
	assert.True(t, infos[0].IsDefault)
	assert.Equal(t, endpoint.Render, infos[0].Direction)
	assert.False(t, infos[1].IsDefault)

	require.NoError(t, c.Close())
	assert.Zero(t, p.Outstanding())
}
