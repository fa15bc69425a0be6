package cli

import (
	"os"
)

// Options holds CLI flag values
type Options struct {
	ConfigPath string
	Output     string

	// ServerURL and Token address a running admin server
	ServerURL string
	Token     string
}

// DefaultOptions returns Options seeded from the environment
func DefaultOptions() *Options {
	return &Options{
		ConfigPath: os.Getenv("GAMEDB_CONFIG"),
		Output:     "text",
		ServerURL:  getEnvOrDefault("GAMEDB_URL", "http://localhost:8080"),
		Token:      os.Getenv("GAMEDB_SERVER_ADMIN_TOKEN"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
