package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckName rejects names that would escape or collapse the directory they
// are joined to. Crash archives name their directory and files themselves,
// so both are treated as untrusted.
func CheckName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name")
	case name == "." || name == "..":
		return fmt.Errorf("reserved name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name %q contains a path separator", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("name %q contains a NUL byte", name)
	case filepath.VolumeName(name) != "":
		return fmt.Errorf("name %q carries a volume", name)
	}
	return nil
}

// ResolveDirectoryPath returns <root>/<directoryName>.
func ResolveDirectoryPath(root, directoryName string) (string, error) {
	if err := CheckName(directoryName); err != nil {
		return "", fmt.Errorf("crash directory: %w", err)
	}
	return filepath.Join(root, directoryName), nil
}

// ResolveFilePath returns <root>/<directoryName>/<fileName>.
func ResolveFilePath(root, directoryName, fileName string) (string, error) {
	dir, err := ResolveDirectoryPath(root, directoryName)
	if err != nil {
		return "", err
	}
	if err := CheckName(fileName); err != nil {
		return "", fmt.Errorf("crash file: %w", err)
	}
	return filepath.Join(dir, fileName), nil
}

// QuotePath wraps p in double quotes when it contains whitespace that would
// split it on a shell command line.
func QuotePath(p string) string {
	if strings.ContainsAny(p, " \t\n") {
		return `"` + p + `"`
	}
	return p
}

// RemoveOutputRoot deletes root and everything below it. It refuses paths
// that are empty, a filesystem root or the user's home directory. The
// returned bool is false when there was nothing to remove.
func RemoveOutputRoot(root string) (bool, error) {
	if strings.TrimSpace(root) == "" {
		return false, fmt.Errorf("refusing to remove an empty path")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	if abs == filepath.VolumeName(abs)+string(filepath.Separator) {
		return false, fmt.Errorf("refusing to remove filesystem root %s", abs)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == abs {
		return false, fmt.Errorf("refusing to remove home directory %s", abs)
	}

	if _, err := os.Lstat(abs); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(abs); err != nil {
		return false, err
	}
	return true, nil
}
