// Package dotdir manages the .bridge/ and ~/.bridge directories.
//
// The directory holds config.toml and, for the sqlite provider, the state
// database that backs user profiles and the conversation reference directory.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the bridge directory.
	DirName = ".bridge"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .bridge/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.bridge/ dir
//  3. Home ~/.bridge/ dir
//
// If none of those exist an empty string is returned and callers fall back
// to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating bridge directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, DirName)) {
		return filepath.Join(cwd, DirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	if isDir(filepath.Join(home, DirName)) {
		return filepath.Join(home, DirName), nil
	}

	return "", nil
}

// Init creates a .bridge/ directory under parent. The returned bool is false
// when the directory already existed.
func (m *Manager) Init(parent string) (string, bool, error) {
	dir := filepath.Join(parent, DirName)
	if isDir(dir) {
		return dir, false, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating %s directory: %w", DirName, err)
	}

	return dir, true, nil
}

// ResolvePath anchors a relative file path to the resolved .bridge/
// directory. Absolute paths, and any path when no directory resolves,
// are returned unchanged.
func (m *Manager) ResolvePath(overrideDir, path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return path, nil
	}

	return filepath.Join(dir, path), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
