//go:build !windows

package wasapi

import (
	"fmt"
	"runtime"

	"soundctl.click/internal/endpoint"
)

// New reports that the backend cannot run on this operating system
func New() (endpoint.Platform, error) {
	return nil, fmt.Errorf("%w: %s backend requires windows, running on %s", endpoint.ErrNotSupported, Name, runtime.GOOS)
}
