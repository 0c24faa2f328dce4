package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env        Env
	Server     ServerConfig
	Database   DatabaseConfig
	Repository RepositoryConfig
	Import     ImportConfig
	NATS       NATSConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host       string `envconfig:"SERVER_HOST" default:"localhost"`
	Port       string `envconfig:"SERVER_PORT" default:"8080"`
	AdminToken string `envconfig:"SERVER_ADMIN_TOKEN"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// RepositoryConfig describes the managed filesystem root and the path rules
// applied to every client-supplied path.
type RepositoryConfig struct {
	Root            string `envconfig:"REPO_ROOT" required:"true"`
	CaseSensitive   bool   `envconfig:"REPO_CASE_SENSITIVE" default:"true"`
	RejectWindows   bool   `envconfig:"REPO_REJECT_WINDOWS_NAMES" default:"true"`
	Transliterate   bool   `envconfig:"REPO_TRANSLITERATE" default:"true"`
	DefaultChecksum string `envconfig:"REPO_DEFAULT_CHECKSUM" default:"SHA-256"`
}

// ImportConfig controls destination planning for fileset imports.
type ImportConfig struct {
	// Template is expanded per user/session to compute default import
	// destinations. A double slash separates the root-owned prefix from the
	// user-owned suffix.
	Template         string        `envconfig:"IMPORT_TEMPLATE" default:"%user%_%userId%//%year%-%month%/%day%"`
	DefaultTrimDepth int           `envconfig:"IMPORT_DEFAULT_TRIM_DEPTH" default:"1"`
	RetryDelay       time.Duration `envconfig:"IMPORT_MKDIR_RETRY_DELAY" default:"100ms"`
}

type NATSConfig struct {
	URL          string `envconfig:"NATS_URL" required:"true"`
	StreamName   string `envconfig:"NATS_STREAM_NAME" default:"REPO"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME" default:"repo-indexer"`
	Subject      string `envconfig:"NATS_SUBJECT" default:"repo.fileset.registered"`
	DeliverGroup string `envconfig:"NATS_DELIVER_GROUP" default:"indexers"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
