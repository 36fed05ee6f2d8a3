package config

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const appDir = "soundctl"

// XDGDirs provides XDG Base Directory compliant paths for SoundCtl
type XDGDirs struct {
	fs afero.Fs
}

// NewXDGDirs creates a new XDG directory manager on the OS filesystem
func NewXDGDirs() *XDGDirs {
	return NewXDGDirsWithFilesystem(afero.NewOsFs())
}

// NewXDGDirsWithFilesystem creates an XDG directory manager that checks for
// files through fs
func NewXDGDirsWithFilesystem(fs afero.Fs) *XDGDirs {
	return &XDGDirs{fs: fs}
}

// GetCachePath returns the cache directory path for a specific purpose
func (x *XDGDirs) GetCachePath(purpose string) string {
	baseDir := appDir
	if purpose != "" {
		baseDir = filepath.Join(baseDir, purpose)
	}
	return filepath.Join(xdg.CacheHome, baseDir)
}

// GetConfigPaths returns prioritized paths where config files can be found:
// the user config dir, then the system config dirs
func (x *XDGDirs) GetConfigPaths(filename string) []string {
	return joinAll(xdg.ConfigHome, xdg.ConfigDirs, filename)
}

// GetDataPaths returns the user data dir, then the system data dirs
func (x *XDGDirs) GetDataPaths() []string {
	return joinAll(xdg.DataHome, xdg.DataDirs, "")
}

func joinAll(home string, dirs []string, filename string) []string {
	paths := make([]string, 0, len(dirs)+1)
	for _, dir := range append([]string{home}, dirs...) {
		path := filepath.Join(dir, appDir)
		if filename != "" {
			path = filepath.Join(path, filename)
		}
		paths = append(paths, path)
	}
	return paths
}

// FindDataFile searches the data directories for relativePath and returns
// the first existing file, or "" when none exists
func (x *XDGDirs) FindDataFile(relativePath string) string {
	relativePath = sanitizePath(relativePath)
	if relativePath == "" {
		return ""
	}

	for i, basePath := range x.GetDataPaths() {
		fullPath := filepath.Join(basePath, relativePath)
		if _, err := x.fs.Stat(fullPath); err == nil {
			slog.Debug("data file found", "relative_path", relativePath, "full_path", fullPath, "path_index", i)
			return fullPath
		}
	}

	slog.Debug("data file not found in any path", "relative_path", relativePath)
	return ""
}

// sanitizePath removes dangerous path components and normalizes the path
func sanitizePath(path string) string {
	path = strings.ReplaceAll(path, "\x00", "")
	path = strings.ReplaceAll(path, "\n", "")
	path = strings.ReplaceAll(path, "\r", "")

	if path == "" {
		return ""
	}
	path = filepath.Clean(path)

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") || path == ".." || strings.HasPrefix(path, "../") || strings.Contains(path, "/../") {
		slog.Warn("rejecting potentially dangerous path", "path", path)
		return ""
	}

	return path
}
