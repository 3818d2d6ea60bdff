// Package config reads environment defaults for command-line flags.
package config

import (
	"os"
	"strings"
)

// Environment variables understood by the binaries.
const (
	EnvAddr        = "CHESSMATCH_ADDR"
	EnvDataDir     = "CHESSMATCH_DATA_DIR"
	EnvInMemory    = "CHESSMATCH_IN_MEMORY"
	EnvCaptureTurn = "CHESSMATCH_CAPTURE_TURN"
	EnvOrigins     = "CHESSMATCH_ORIGINS"
)

// Getenv returns the variable or def when unset or empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Getenb reads a boolean variable. Unrecognised values fall back to def.
func Getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

// SplitList splits a comma-separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
