package platform

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
)

const procVersionPath = "/proc/version"

// WSLInfo describes a Windows Subsystem for Linux guest. Windows audio
// endpoints live on the host and cannot be reached from inside it.
type WSLInfo struct {
	Detected bool
	Distro   string
	Version  int // 1 or 2, 0 when unknown
}

// IsWSL reports whether soundctl runs inside WSL
func IsWSL() bool {
	return DetectWSL(afero.NewOsFs(), os.Getenv).Detected
}

// DetectWSL inspects the WSL environment variables and the kernel banner
// read from fsys
func DetectWSL(fsys afero.Fs, getenv func(string) string) WSLInfo {
	info := WSLInfo{Distro: getenv("WSL_DISTRO_NAME")}

	banner := ""
	if data, err := afero.ReadFile(fsys, procVersionPath); err == nil {
		banner = strings.ToLower(string(data))
	}

	switch {
	case strings.Contains(banner, "wsl2"):
		info.Version = 2
	case strings.Contains(banner, "-microsoft"):
		info.Version = 1
	}

	info.Detected = info.Distro != "" || getenv("WSL_INTEROP") != "" ||
		strings.Contains(banner, "microsoft")
	if info.Detected && info.Version == 0 && getenv("WSL_INTEROP") != "" {
		info.Version = 2
	}

	slog.Debug("WSL detection", "detected", info.Detected, "distro", info.Distro, "version", info.Version)
	return info
}
