package platform

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestDetectWSL(t *testing.T) {
	tests := []struct {
		name     string
		banner   string
		env      map[string]string
		expected WSLInfo
	}{
		{
			name:     "WSL1 kernel banner",
			banner:   "Linux version 4.4.0-19041-Microsoft (Microsoft@Microsoft.com) (gcc version 5.4.0) #1237-Microsoft",
			expected: WSLInfo{Detected: true, Version: 1},
		},
		{
			name:     "WSL2 kernel banner with distro",
			banner:   "Linux version 5.15.74.2-microsoft-standard-WSL2 (gcc (GCC) 11.2.0) #1 SMP",
			env:      map[string]string{"WSL_DISTRO_NAME": "Ubuntu"},
			expected: WSLInfo{Detected: true, Distro: "Ubuntu", Version: 2},
		},
		{
			name:     "interop socket without banner",
			env:      map[string]string{"WSL_INTEROP": "/run/WSL/8_interop"},
			expected: WSLInfo{Detected: true, Version: 2},
		},
		{
			name:     "native Linux",
			banner:   "Linux version 5.15.0-56-generic (buildd@lcy02-amd64-044) #62-Ubuntu SMP",
			expected: WSLInfo{},
		},
		{
			name:     "no banner and no environment",
			expected: WSLInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			if tt.banner != "" {
				assert.NoError(t, afero.WriteFile(fsys, procVersionPath, []byte(tt.banner), 0o444))
			}
			assert.Equal(t, tt.expected, DetectWSL(fsys, envFrom(tt.env)))
		})
	}
}
