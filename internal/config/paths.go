package config

import (
	"os"
	"path/filepath"
	"strings"
)

// homeEnv points relative runtime paths somewhere other than the binary's
// directory, e.g. a mounted volume in a container.
const homeEnv = "FOLIO_HOME"

// RuntimeBase is the directory relative runtime paths resolve against:
// $FOLIO_HOME, else the executable's directory, else the working directory.
func RuntimeBase() string {
	if home := strings.TrimSpace(os.Getenv(homeEnv)); home != "" {
		return filepath.Clean(home)
	}
	if exe, err := os.Executable(); err == nil && exe != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolveRuntimePath returns raw, or fallback when raw is blank, made
// absolute against RuntimeBase.
func ResolveRuntimePath(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(RuntimeBase(), target)
}
