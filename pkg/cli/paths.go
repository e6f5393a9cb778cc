package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths provides access to the app directory under ~/.giztoy
type Paths struct {
	// AppName is the application name
	AppName string

	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		AppName: appName,
		HomeDir: home,
	}, nil
}

// BaseDir returns the base directory (~/.giztoy)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns the app-specific directory (~/.giztoy/<app>)
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns the config file path (~/.giztoy/<app>/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// LuaDir returns the default standard library directory (~/.giztoy/<app>/lua)
func (p *Paths) LuaDir() string {
	return filepath.Join(p.AppDir(), "lua")
}

// CaptureDir returns where camera captures are saved (~/.giztoy/<app>/captures)
func (p *Paths) CaptureDir() string {
	return filepath.Join(p.AppDir(), "captures")
}

// HistoryFile returns the console history file (~/.giztoy/<app>/history)
func (p *Paths) HistoryFile() string {
	return filepath.Join(p.AppDir(), "history")
}

// EnsureCaptureDir creates the capture directory if it doesn't exist
func (p *Paths) EnsureCaptureDir() error {
	return os.MkdirAll(p.CaptureDir(), 0755)
}

// ExpandHome replaces a leading "~" of path with HomeDir.
func (p *Paths) ExpandHome(path string) string {
	switch {
	case path == "~":
		return p.HomeDir
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(p.HomeDir, path[2:])
	}
	return path
}
