package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" (default) or "pretty"

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Empty DatabaseURL selects the in-memory account store.
	DatabaseURL   string
	DBMaxConns    int32
	DBMinConns    int32
	DBSchema      string
	DBAutoMigrate bool

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("MURMUR_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("MURMUR_LOG_LEVEL", "info"),
		LogFormat: EnvString("MURMUR_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("MURMUR_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("MURMUR_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("MURMUR_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("MURMUR_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("MURMUR_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL:   EnvString("MURMUR_DATABASE_URL", ""),
		DBMaxConns:    EnvInt32("MURMUR_DB_MAX_CONNS", 10),
		DBMinConns:    EnvInt32("MURMUR_DB_MIN_CONNS", 0),
		DBSchema:      EnvString("MURMUR_DB_SCHEMA", "murmur"),
		DBAutoMigrate: EnvBool("MURMUR_DB_AUTO_MIGRATE", true),

		ReadinessRequireDB: EnvBool("MURMUR_READINESS_REQUIRE_DB", false),

		MetricsEnabled: EnvBool("MURMUR_METRICS_ENABLED", true),
	}
}
