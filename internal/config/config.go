// Package config provides engine configuration management through environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds host-level configuration for wiring the reference CryptoProvider,
// the logger and the metrics provider. It never holds a password, session key
// or recovery code; those live only inside an active session.
type Config struct {
	// Logging
	LogLevel string

	// Argon2id cost parameters for the reference CryptoProvider's derive_key.
	// Defaults follow the OWASP-recommended minimum for interactive logins.
	Argon2Time     uint32
	Argon2MemoryKB uint32
	Argon2Threads  uint8

	// Metrics
	MetricsEnabled   bool
	MetricsNamespace string
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with existing environment variables.
func Load() *Config {
	loadDotEnv()

	return &Config{
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		Argon2Time:     uint32(env.GetInt("ARGON2_TIME", 1)),
		Argon2MemoryKB: uint32(env.GetInt("ARGON2_MEMORY_KB", 64*1024)),
		Argon2Threads:  uint8(env.GetInt("ARGON2_THREADS", 4)),

		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "vaultcore"),
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
