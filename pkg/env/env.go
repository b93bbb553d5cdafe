// Package env reads process environment values with the TILLPOINT_ prefix
// convention used across the service configuration.
package env

import (
	"os"
	"strings"
)

// Get returns the first non-empty value among the TILLPOINT_-prefixed
// variant of key and key itself, or fallback when neither is set.
func Get(key, fallback string) string {
	for _, name := range []string{"TILLPOINT_" + key, key} {
		if val, ok := os.LookupEnv(name); ok && strings.TrimSpace(val) != "" {
			return val
		}
	}
	return fallback
}
