package config

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config carries everything the server needs, read from the
// environment.
type Config struct {
	DBType         string // sqlite or postgres
	DBPath         string // sqlite file path
	PostgresDSN    string
	HTTPPort       string
	SchemaPath     string // empty means the built-in demo schema
	RedisAddr      string // empty disables snapshot export
	KafkaBrokers   string // empty disables change events
	SnapshotCodec  string
	SnapshotCron   string
	EventRetention time.Duration
}

// LoadConfig reads the configuration from the environment, falling back
// to a local sqlite setup that works out of the box.
func LoadConfig() *Config {
	retention := 30 * 24 * time.Hour
	if v := os.Getenv("EVENT_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			retention = d
		}
	}

	return &Config{
		DBType:         envOr("DB_TYPE", "sqlite"),
		DBPath:         envOr("DB_PATH", "graphbase.db"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		HTTPPort:       envOr("HTTP_PORT", "8080"),
		SchemaPath:     os.Getenv("SCHEMA_PATH"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		SnapshotCodec:  envOr("SNAPSHOT_CODEC", "gzip"),
		SnapshotCron:   envOr("SNAPSHOT_CRON", "@every 5m"),
		EventRetention: retention,
	}
}

// GetDb opens the configured database. TranslateError is on so unique
// violations surface as gorm.ErrDuplicatedKey on both drivers.
func GetDb(cnf *Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
	}

	switch cnf.DBType {
	case "postgres":
		return gorm.Open(postgres.Open(cnf.PostgresDSN), gormConfig)
	default:
		return gorm.Open(sqlite.Open(cnf.DBPath), gormConfig)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
