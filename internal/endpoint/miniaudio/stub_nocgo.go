//go:build !cgo

package miniaudio

import (
	"fmt"

	"soundctl.click/internal/endpoint"
)

// New reports that this build has no miniaudio support. malgo links
// miniaudio through cgo; rebuild with CGO_ENABLED=1 and a C compiler.
func New() (endpoint.Platform, error) {
	return nil, fmt.Errorf("%w: %s backend requires cgo", endpoint.ErrNotSupported, Name)
}
