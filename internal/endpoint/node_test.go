package endpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundctl.click/internal/endpoint"
	"soundctl.click/internal/endpoint/memory"
)

func nodeFixture(t *testing.T, part *memory.Part) (*memory.Platform, *endpoint.Device) {
	t.Helper()
	p := memory.New()
	p.Add(endpoint.Capture, &memory.Device{
		Name:       "Microphone (Test)",
		Connectors: []*memory.Connector{{Part: part}},
	})
	c := newCatalog(t, p)

	dev, err := c.ByIndex(endpoint.Capture, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.Close() })
	return p, dev
}

func TestUnderlyingVolumeAverageInDecibels(t *testing.T) {
	_, dev := nodeFixture(t, &memory.Part{Name: "Boost", Levels: []float32{-6, -3}})

	node, err := dev.UnderlyingVolume(0)
	require.NoError(t, err)
	defer node.Close()

	assert.Equal(t, "Boost", node.Name())

	n, err := node.Channels()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := node.Level(endpoint.AllChannels)
	require.NoError(t, err)
	assert.InDelta(t, 0.5957, all, 1e-4)

	left, err := node.Level(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5012, left, 1e-4)
}

func TestVolumeNodeSetLevel(t *testing.T) {
	part := &memory.Part{Name: "Boost", Levels: []float32{0, 0}}
	_, dev := nodeFixture(t, part)

	node, err := dev.UnderlyingVolume(0)
	require.NoError(t, err)
	defer node.Close()

	require.NoError(t, node.SetLevel(0.1, endpoint.AllChannels))
	assert.InDelta(t, -20, part.Levels[0], 1e-4)
	assert.InDelta(t, -20, part.Levels[1], 1e-4)

	require.NoError(t, node.SetLevel(1, 1))
	assert.InDelta(t, -20, part.Levels[0], 1e-4)
	assert.InDelta(t, 0, part.Levels[1], 1e-4)

	// no range check on node levels
	require.NoError(t, node.SetLevel(10, 0))
	assert.InDelta(t, 20, part.Levels[0], 1e-4)
}

func TestVolumeNodeOutlivesDevice(t *testing.T) {
	p, dev := nodeFixture(t, &memory.Part{Name: "Boost", Levels: []float32{-6}})

	node, err := dev.UnderlyingVolume(0)
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	v, err := node.Level(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5012, v, 1e-4)

	require.NoError(t, node.Close())
	require.NoError(t, node.Close())
	_, err = node.Level(0)
	assert.ErrorIs(t, err, endpoint.ErrInvalidDevice)
	assert.Zero(t, p.DoubleReleases())
}

func TestUnderlyingVolumeErrors(t *testing.T) {
	tests := []struct {
		name    string
		conn    *memory.Connector
		index   int
		wantErr error
	}{
		{"missing connector", &memory.Connector{Part: &memory.Part{}}, 3, endpoint.ErrConnectorUnavailable},
		{"not connected", &memory.Connector{ConnectErr: memory.ErrInjected}, 0, endpoint.ErrConnectionUnavailable},
		{"part query", &memory.Connector{PartErr: memory.ErrInjected}, 0, endpoint.ErrPartUnavailable},
		{"no volume interface", &memory.Connector{Part: &memory.Part{Name: "Mute", NoVolume: true}}, 0, endpoint.ErrNoVolumeInterface},
		{"activation failure", &memory.Connector{Part: &memory.Part{ActivateErr: memory.ErrInjected}}, 0, endpoint.ErrPartUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := memory.New()
			p.Add(endpoint.Render, &memory.Device{Name: "Speakers", Connectors: []*memory.Connector{tt.conn}})
			c, err := endpoint.NewCatalog(p)
			require.NoError(t, err)

			dev, err := c.ByIndex(endpoint.Render, 0)
			require.NoError(t, err)

			_, err = dev.UnderlyingVolume(tt.index)
			assert.ErrorIs(t, err, tt.wantErr)

			require.NoError(t, dev.Close())
			require.NoError(t, c.Close())
			assert.Zero(t, p.Outstanding())
		})
	}
}

func TestUnderlyingVolumeUnnamedPart(t *testing.T) {
	_, dev := nodeFixture(t, &memory.Part{NameErr: memory.ErrInjected, Levels: []float32{0}})

	node, err := dev.UnderlyingVolume(0)
	require.NoError(t, err)
	defer node.Close()
	assert.Empty(t, node.Name())
}

func TestVolumeNodeChannelFailures(t *testing.T) {
	_, dev := nodeFixture(t, &memory.Part{Name: "Boost", Levels: []float32{0, 0}, CountErr: memory.ErrInjected})
	node, err := dev.UnderlyingVolume(0)
	require.NoError(t, err)
	defer node.Close()

	_, err = node.Channels()
	assert.ErrorIs(t, err, endpoint.ErrChannelQueryFailed)
	_, err = node.Level(endpoint.AllChannels)
	assert.ErrorIs(t, err, endpoint.ErrChannelQueryFailed)

	// single channel access does not need the count
	_, err = node.Level(1)
	assert.NoError(t, err)
}

func TestVolumeNodeLevelFailure(t *testing.T) {
	_, dev := nodeFixture(t, &memory.Part{Name: "Boost", Levels: []float32{0}, LevelErr: memory.ErrInjected})
	node, err := dev.UnderlyingVolume(0)
	require.NoError(t, err)
	defer node.Close()

	_, err = node.Level(0)
	assert.ErrorIs(t, err, endpoint.ErrLevelUnavailable)
	assert.ErrorIs(t, node.SetLevel(0.5, endpoint.AllChannels), endpoint.ErrLevelUnavailable)
}
