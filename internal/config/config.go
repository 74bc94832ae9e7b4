package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Ledgersync"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ledgersync"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	Sync struct {
		PollInterval        time.Duration `envconfig:"SYNC_POLL_INTERVAL" default:"15s"`
		IncrementalInterval time.Duration `envconfig:"SYNC_INCREMENTAL_INTERVAL" default:"1h"`
		LeaseTimeout        time.Duration `envconfig:"SYNC_LEASE_TIMEOUT" default:"15m"`
		ChunkDays           int           `envconfig:"SYNC_CHUNK_DAYS" default:"30"`
		MaxAttempts         int           `envconfig:"SYNC_MAX_ATTEMPTS" default:"5"`
		WriteBatchSize      int           `envconfig:"SYNC_WRITE_BATCH_SIZE" default:"500"`

		// When true a single failed chunk marks the whole session failed;
		// otherwise the session completes with a partial-success note.
		FailSessionOnJobFailure bool `envconfig:"SYNC_FAIL_SESSION_ON_JOB_FAILURE" default:"false"`
	}

	Stripe struct {
		WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	}

	PayPal struct {
		WebhookSecret string `envconfig:"PAYPAL_WEBHOOK_SECRET"`
	}

	Wise struct {
		WebhookSecret string `envconfig:"WISE_WEBHOOK_SECRET"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
