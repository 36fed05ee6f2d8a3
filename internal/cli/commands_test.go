package cli

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundctl.click/internal/config"
	"soundctl.click/internal/endpoint"
	"soundctl.click/internal/endpoint/memory"
)

func TestListCommand(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("list"))
	assert.Empty(t, h.stderr.String())

	want := strings.Join([]string{
		"render devices (OUT):",
		"* [0] Speakers (Realtek High Definition Audio)  " + speakersID,
		"  [1] Headphones (Yeti Stereo Microphone)  " + headphonesID,
		"",
		"capture devices (IN):",
		"* [0] Microphone (Yeti Stereo Microphone)  " + micID,
		"  [1] Line In (Realtek High Definition Audio)  " + lineInID,
		"",
	}, "\n")
	assert.Equal(t, want, h.stdout.String())
	assert.Zero(t, h.platform.Outstanding())
}

func TestListCommandOneDirection(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("list", "in"))
	assert.Contains(t, h.stdout.String(), "capture devices (IN):")
	assert.NotContains(t, h.stdout.String(), "render devices")

	h.stdout.Reset()
	require.Equal(t, 0, h.run("list", "sideways"))
	assert.Empty(t, h.stdout.String())
	assert.Contains(t, h.stderr.String(), `invalid direction "sideways"`)
}

func TestListCommandEmpty(t *testing.T) {
	h := newHarness(t)
	h.platform = memory.New()

	require.Equal(t, 0, h.run("list", "out"))
	assert.Equal(t, "render devices (OUT):\n  (none)\n", h.stdout.String())
}

func TestNodeCommand(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("node", "OUT", "*"), h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "Speakers (Realtek High Definition Audio), connector 0: Master Volume")
	assert.Contains(t, out, "channel 0: 0.5012 (-6.00 dB)")
	assert.Contains(t, out, "channel 1: 0.5012 (-6.00 dB)")
	assert.Contains(t, out, "mean: 0.5012 (-6.00 dB)")
	assert.Zero(t, h.platform.Outstanding())
}

func TestNodeCommandSet(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("node", "IN", "Yeti", "--set", "1"), h.stderr.String())
	part := h.device(t, endpoint.Capture, micID).Connectors[0].Part
	assert.Equal(t, []float32{0, 0}, part.Levels)
	assert.Contains(t, h.stdout.String(), "Microphone Boost")
	assert.Contains(t, h.stdout.String(), "mean: 1.0000 (+0.00 dB)")

	// one channel only, and boosts above 1.0 pass through
	h.stdout.Reset()
	require.Equal(t, 0, h.run("node", "IN", "Yeti", "--set", "2", "--channel", "1"), h.stderr.String())
	assert.Equal(t, float32(0), part.Levels[0])
	assert.InDelta(t, 6.0206, part.Levels[1], 1e-3)
	assert.NotContains(t, h.stdout.String(), "channel 0")
	assert.NotContains(t, h.stdout.String(), "mean")
}

func TestNodeCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no connectors", []string{"node", "IN", "Line"}, "cannot get topology connector"},
		{"zero level", []string{"node", "OUT", "*", "--set", "0"}, "invalid volume"},
		{"bad channel", []string{"node", "OUT", "*", "--channel", "-2"}, "invalid channel -2"},
		{"no device", []string{"node", "OUT", "Nope"}, "invalid device"},
		{"missing args", []string{"node", "OUT"}, "accepts 2 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, 0, h.run(tt.args...))
			assert.Contains(t, h.stderr.String(), tt.want)
			assert.Zero(t, h.platform.Outstanding())
		})
	}
}

func TestNodeCommandWithoutVolumeInterface(t *testing.T) {
	h := newHarness(t)
	h.device(t, endpoint.Render, speakersID).Connectors[0].Part.NoVolume = true

	assert.Equal(t, 0, h.run("node", "OUT", "*"))
	assert.Contains(t, h.stderr.String(), "part has no volume interface")
}

func TestConfigInitCommand(t *testing.T) {
	h := newHarness(t)
	path := "/home/user/.config/soundctl/config.json"

	require.Equal(t, 0, h.run("config", "init", "--path", path))
	assert.Empty(t, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "wrote "+path)

	cm := config.NewConfigManagerWithFilesystem(h.fs)
	written, err := cm.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cm.GetDefaultConfig(), written)
}

func TestConfigInitKeepsExistingFile(t *testing.T) {
	h := newHarness(t)
	path := h.writeConfig(t, `{"backend": "alsa"}`)

	require.Equal(t, 0, h.run("config", "init", "--path", path))
	assert.Contains(t, h.stderr.String(), "already exists, use --force")

	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"backend": "alsa"}`, string(data))

	h.stderr.Reset()
	require.Equal(t, 0, h.run("config", "init", "--path", path, "--force"))
	assert.Empty(t, h.stderr.String(), "an invalid file does not block rewriting it")

	written, err := config.NewConfigManagerWithFilesystem(h.fs).LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "auto", written.Backend)
}

func TestConfigInitDefaultsToUserConfigPath(t *testing.T) {
	h := newHarness(t)
	want := config.NewConfigManagerWithFilesystem(h.fs).UserConfigPath()

	require.Equal(t, 0, h.run("config", "init", "--path", "", "--force"))

	exists, err := afero.Exists(h.fs, want)
	require.NoError(t, err)
	assert.True(t, exists, want)
}
