package envutil

import (
	"os"
	"path/filepath"
)

// GetenvDefault gets the value of an environment variable, or returns the
// specified default value if that variable is unset or empty.
func GetenvDefault(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ResourcePath joins parts onto $KITE_RESOURCES (default /var/kite/resources)
func ResourcePath(parts ...string) string {
	root := GetenvDefault("KITE_RESOURCES", "/var/kite/resources")
	return filepath.Join(append([]string{root}, parts...)...)
}
