// Package db opens the PostgreSQL connection used for recognition history.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	plateadapters "plate_reader/internal/feature/plate/adapters"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds PostgreSQL connection settings.
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL instance; takes precedence over Host/Port
}

// LoadConfigFromEnv reads DB_* and INSTANCE_CONNECTION_NAME.
func LoadConfigFromEnv() Config {
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      sslmode,
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// Enabled reports whether enough settings are present to connect.
// History is optional, so an unconfigured database is not an error.
func (c Config) Enabled() bool {
	return c.Name != "" && (c.Host != "" || c.InstanceName != "")
}

// BuildDSN renders a libpq keyword/value connection string.
func BuildDSN(cfg Config) string {
	kv := map[string]string{
		"user":     cfg.User,
		"password": cfg.Password,
		"dbname":   cfg.Name,
		"sslmode":  cfg.SSLMode,
	}
	if cfg.InstanceName != "" {
		kv["host"] = "/cloudsql/" + cfg.InstanceName
	} else {
		kv["host"] = cfg.Host
		kv["port"] = cfg.Port
	}

	keys := make([]string, 0, len(kv))
	for k, v := range kv {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quote(kv[k]))
	}
	return strings.Join(parts, " ")
}

// quote escapes a value per libpq rules when it contains spaces or quotes.
func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ValidateDSN parses dsn with pgx so malformed settings fail before any retry loop.
func ValidateDSN(dsn string) error {
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return fmt.Errorf("invalid database settings: %w", err)
	}
	return nil
}

// ConnectWithRetry keeps calling opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(dsn string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(gpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// OpenDB connects to PostgreSQL and, when RUN_MIGRATIONS=true, migrates the schema.
func OpenDB(cfg Config) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	if err := ValidateDSN(dsn); err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(dsn, 60*time.Second, openPostgres)
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&plateadapters.RecognitionModel{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
