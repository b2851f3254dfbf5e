package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("FOLIO_RUNTIME_PATH"))
}

// GetLogPath is where full-screen commands log, since the terminal is taken.
func GetLogPath() string {
	return filepath.Join(GetRuntimePath(), "folio.log")
}

// resolveRuntimePath places relative runtime paths under the home directory.
func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".folio"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
