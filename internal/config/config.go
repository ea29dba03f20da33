package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

var AppEnv Config

const (
	DriverFile  = "file"
	DriverMongo = "mongo"
)

type Config struct {
	Port        int         `envconfig:"PORT" default:"3004"`
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	DataDir   string `envconfig:"DATA_DIR" default:"data"`
	ImagesDir string `envconfig:"IMAGES_DIR" default:"public/images/products"`

	StorageDriver   string `envconfig:"STORAGE_DRIVER" default:"file"`
	MongoURI        string `envconfig:"MONGO_URI" default:""`
	DBName          string `envconfig:"DB_NAME" default:"sweetshop"`
	StoreMaxRetries int    `envconfig:"STORE_MAX_RETRIES" default:"3"`

	JWTSecret  string        `envconfig:"JWT_SECRET" default:""`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m"`
}

// Load reads .env when present and decodes the environment into AppEnv.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}

	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppEnv = cfg
	return nil
}

// FromEnv decodes and validates the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case DriverFile:
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORAGE_DRIVER is mongo")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.StorageDriver)
	}

	if c.JWTSecret == "" {
		if c.Environment.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "sweetshop-dev-secret"
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.StoreMaxRetries < 0 {
		return fmt.Errorf("STORE_MAX_RETRIES must not be negative, got %d", c.StoreMaxRetries)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
