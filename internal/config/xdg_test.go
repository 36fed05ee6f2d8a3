package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestXDGConfigPaths(t *testing.T) {
	x := NewXDGDirs()

	paths := x.GetConfigPaths("config.json")
	if len(paths) == 0 {
		t.Fatal("GetConfigPaths returned no paths")
	}
	for i, path := range paths {
		if !filepath.IsAbs(path) {
			t.Errorf("path[%d] = %s is not absolute", i, path)
		}
		if !strings.HasSuffix(path, filepath.Join("soundctl", "config.json")) {
			t.Errorf("path[%d] = %s does not end in soundctl/config.json", i, path)
		}
	}
}

func TestXDGCachePath(t *testing.T) {
	x := NewXDGDirs()

	tests := []struct {
		purpose string
		suffix  string
	}{
		{"logs", filepath.Join("soundctl", "logs")},
		{"", "soundctl"},
	}
	for _, tt := range tests {
		path := x.GetCachePath(tt.purpose)
		if !strings.HasSuffix(path, tt.suffix) {
			t.Errorf("GetCachePath(%q) = %s, want suffix %s", tt.purpose, path, tt.suffix)
		}
	}
}

func TestFindDataFile(t *testing.T) {
	memFS := afero.NewMemMapFs()
	x := NewXDGDirsWithFilesystem(memFS)

	dataPaths := x.GetDataPaths()
	if len(dataPaths) < 2 {
		t.Skip("needs at least one system data directory")
	}

	systemFile := filepath.Join(dataPaths[len(dataPaths)-1], "sounds", "ding.wav")
	if err := afero.WriteFile(memFS, systemFile, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := x.FindDataFile(filepath.Join("sounds", "ding.wav")); got != systemFile {
		t.Errorf("expected %s, got %s", systemFile, got)
	}

	userFile := filepath.Join(dataPaths[0], "sounds", "ding.wav")
	if err := afero.WriteFile(memFS, userFile, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := x.FindDataFile(filepath.Join("sounds", "ding.wav")); got != userFile {
		t.Errorf("user data dir should win, got %s", got)
	}

	if got := x.FindDataFile("sounds/missing.wav"); got != "" {
		t.Errorf("expected empty result, got %s", got)
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sounds/ding.wav", filepath.Join("sounds", "ding.wav")},
		{"sounds/./ding.wav", filepath.Join("sounds", "ding.wav")},
		{"../etc/passwd", ""},
		{"/etc/passwd", ""},
		{"sounds/../../etc", ""},
		{"", ""},
		{"ding\x00.wav", "ding.wav"},
	}
	for _, tt := range tests {
		if got := sanitizePath(tt.in); got != tt.want {
			t.Errorf("sanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
