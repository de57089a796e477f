package config // loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable; required variables are enforced by must() and missing
// values abort startup with a fatal log message.
type Config struct {
	Env              string   // application environment (dev/test/prod)
	Port             string   // HTTP port to listen on
	DBUser           string   // database username
	DBPass           string   // database password (optional)
	DBHost           string   // database host address
	DBPort           string   // database port number
	DBName           string   // database name
	JWTSecret        string   // secret used to sign JWTs
	AccessTTLMin     int      // access token time-to-live in minutes
	RefreshTTLDays   int      // refresh token time-to-live in days
	PBKDF2Iterations int      // PBKDF2 iteration count for credential records
	BootRetries      int      // attempts to reach the database at startup
	BootRetryDelayMS int      // delay between boot attempts
	CORSOrigins      []string // allowed CORS origins (empty allows any)
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
		PBKDF2Iterations: optInt("PBKDF2_ITERATIONS", 210000),
		BootRetries:      optInt("DB_BOOT_RETRIES", 20),
		BootRetryDelayMS: optInt("DB_BOOT_RETRY_DELAY_MS", 1500),
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGIN")),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is must() plus integer conversion.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// optInt reads an optional integer with a default.
func optInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// splitList parses a comma-separated value into trimmed non-empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
