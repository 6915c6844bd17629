package config

import (
	"os"
	"path/filepath"
	"runtime"

	"duef/internal/crash"
	"duef/internal/utils"
)

const (
	// DefaultInputPath is read when no crash file is named.
	DefaultInputPath = "CrashFile.uecrash"
	// OutputEnv overrides the output root.
	OutputEnv = "DUEF_OUTPUT"
)

// OutputMode selects what a successful run prints on stdout.
type OutputMode int

const (
	// PrintDirectory prints the crash directory path.
	PrintDirectory OutputMode = iota
	// PrintFiles prints every extracted file path on one line.
	PrintFiles
)

// Config is everything a run needs; it is built once by the CLI and passed
// down explicitly.
type Config struct {
	InputPath   string
	OutputRoot  string
	Output      OutputMode
	Verbose     bool
	StrictIndex bool
	Format      crash.Format
	MaxSize     int64
}

// DiscoverOutputRoot picks the directory extracted crash reports go to:
// an explicit path first, then $DUEF_OUTPUT, then %LOCALAPPDATA%\duef on
// Windows, then ~/.duef.
func DiscoverOutputRoot(customPath string, log *utils.Logger) string {
	if customPath != "" {
		log.Debug("Using custom output root: %s", customPath)
		return customPath
	}
	if env := os.Getenv(OutputEnv); env != "" {
		log.Debug("Using output root from %s: %s", OutputEnv, env)
		return env
	}

	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			root := filepath.Join(local, "duef")
			log.Debug("Using output root: %s", root)
			return root
		}
		log.Warn("LOCALAPPDATA is not set, falling back to the home directory")
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		log.Warn("Could not determine the home directory, using the current directory")
		return ".duef"
	}
	root := filepath.Join(home, ".duef")
	log.Debug("Using output root: %s", root)
	return root
}
