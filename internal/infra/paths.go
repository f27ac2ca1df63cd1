package infra

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "cyrpto-trader"

// WorkspaceDir returns the root for runtime data (journal db, lock
// file). A local "_workspace" directory wins for portable/dev runs;
// otherwise the OS data directory is used.
func WorkspaceDir() string {
	localDir := "_workspace"
	if _, err := os.Stat(localDir); err == nil {
		return localDir
	}

	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return localDir
	}
	return filepath.Join(home, ".local", "share", appDirName)
}

// EnsureDir creates the directory if needed.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// CreateLockFile takes a single-instance lock under workDir. Two
// traders reconciling the same account would cancel each other's
// orders, so a second instance must refuse to start.
func CreateLockFile(workDir string) (func(), error) {
	lockPath := filepath.Join(workDir, "instance.lock")

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another instance is already running (lock file exists: %s)", lockPath)
		}
		return nil, err
	}
	fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()

	return func() { os.Remove(lockPath) }, nil
}

// ResolveConfigPath finds settings.yaml: current directory first, then
// the OS config directory.
func ResolveConfigPath() string {
	const name = "settings.yaml"

	if _, err := os.Stat(name); err == nil {
		return name
	}

	if configRoot, err := os.UserConfigDir(); err == nil {
		osPath := filepath.Join(configRoot, appDirName, name)
		if _, err := os.Stat(osPath); err == nil {
			return osPath
		}
	}

	// Let LoadConfig report the missing file with the template hint.
	return name
}
