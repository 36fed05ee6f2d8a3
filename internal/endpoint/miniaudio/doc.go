// Package miniaudio implements a read-only endpoint platform on miniaudio
// through malgo. It lists devices and reports the default one on every
// operating system miniaudio supports. Master volume, mute and device
// topology are not exposed by miniaudio.
package miniaudio

// Name is the backend name used in configuration
const Name = "miniaudio"
