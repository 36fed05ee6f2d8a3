// Package fs hands out the afero filesystems the rest of SoundCtl reads
// through, so configuration and sound files can be served from memory in
// tests.
package fs

import (
	"github.com/spf13/afero"
)

// Factory provides filesystem instances
type Factory interface {
	// Production is the OS filesystem
	Production() afero.Fs
	// ReadOnly is the OS filesystem with writes rejected; chime files and
	// configuration are only ever read
	ReadOnly() afero.Fs
	// Memory is an isolated in-memory filesystem
	Memory() afero.Fs
}

type defaultFactory struct{}

// NewDefaultFactory returns the standard Factory
func NewDefaultFactory() Factory {
	return defaultFactory{}
}

func (defaultFactory) Production() afero.Fs {
	return afero.NewOsFs()
}

func (defaultFactory) ReadOnly() afero.Fs {
	return afero.NewReadOnlyFs(afero.NewOsFs())
}

func (defaultFactory) Memory() afero.Fs {
	return afero.NewMemMapFs()
}
