package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings, populated from the environment.
type Config struct {
	// HTTP server
	Port     string
	LogLevel string

	// Storage backend: "memory" or "firestore"
	StoreBackend     string
	FirestoreProject string

	// Optional raw-statement archival
	ArchiveBucket string

	// PDF text-extraction service
	ExtractorURL string

	// Classification
	GeminiModel     string
	ChunkSize       int
	ClassifyTimeout time.Duration

	// Learned-override matching
	OverrideTolerance float64

	// Static bearer tokens for the dev verifier: "token1=user1,token2=user2"
	AuthTokens string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:     getEnv("STORE_BACKEND", "memory"),
		FirestoreProject: getEnv("FIRESTORE_PROJECT", ""),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		ExtractorURL: getEnv("EXTRACTOR_URL", "http://localhost:9090"),

		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ChunkSize:       getEnvInt("CLASSIFY_CHUNK_SIZE", 20),
		ClassifyTimeout: getEnvDuration("CLASSIFY_TIMEOUT", 60*time.Second),

		OverrideTolerance: getEnvFloat("OVERRIDE_TOLERANCE", 10),

		AuthTokens: getEnv("AUTH_TOKENS", ""),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "memory":
	case "firestore":
		if c.FirestoreProject == "" {
			errs = append(errs, "FIRESTORE_PROJECT is required with the firestore backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid store backend %q: must be memory or firestore", c.StoreBackend))
	}

	if c.ExtractorURL != "" {
		if u, err := url.Parse(c.ExtractorURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid extractor URL %q", c.ExtractorURL))
		}
	}

	if c.ChunkSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid chunk size %d: must be >= 1", c.ChunkSize))
	}
	if c.ClassifyTimeout <= 0 {
		errs = append(errs, "classify timeout must be positive")
	}
	if c.OverrideTolerance < 0 {
		errs = append(errs, "override tolerance must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TokenMap parses AuthTokens into a token -> user map.
func (c *Config) TokenMap() map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(c.AuthTokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		m[parts[0]] = parts[1]
	}
	return m
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
