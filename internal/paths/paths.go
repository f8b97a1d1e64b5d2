package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// AppName is the directory name used under the XDG config home.
const AppName = "mcpm"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the permission for directories created on behalf of a client.
// Client config directories (~/.cursor, .vscode) are conventionally world-readable.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if path == "" {
		return ErrInvalidPath
	}
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or an empty string if it cannot
// be determined. Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		if err == nil {
			return "", ErrHomeDirNotFound
		}
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// HomeJoin joins rel onto the home directory.
// Returns an empty string when the home directory is unknown.
func HomeJoin(rel ...string) string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(append([]string{home}, rel...)...)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// AppConfigDir returns the directory holding mcpm's own config file.
// Returns: <ConfigHome>/mcpm/
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}
