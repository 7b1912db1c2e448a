package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings, one section per backing
// system. Values come from the environment; a .env file is honored in
// dev.
type Config struct {
	ServerPort    int    `env:"SERVER_PORT" envDefault:"8080"`
	SessionSecret string `env:"SESSION_SECRET"`

	Database DatabaseConfig
	Minio    MinioConfig
	GCS      GCSConfig
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig

	// StorageBackend selects the object store: "minio" or "gcs".
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"minio"`

	// EventBackend selects the event broker: "rabbitmq", "pubsub" or
	// "" to disable asset events.
	EventBackend string `env:"EVENT_BACKEND"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"mediavault"`
	Password string `env:"DB_PASSWORD" envDefault:"password"`
	DBName   string `env:"DB_NAME" envDefault:"mediavault_db"`
	UseSSL   bool   `env:"DB_USE_SSL" envDefault:"false"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"assets"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	ProjectID       string `env:"GCS_PROJECT_ID"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

type RabbitMQConfig struct {
	URL             string `env:"RABBITMQ_URL"`
	QueueDurable    bool   `env:"RABBITMQ_QUEUE_DURABLE" envDefault:"true"`
	QueueAutoDelete bool   `env:"RABBITMQ_QUEUE_AUTO_DELETE" envDefault:"false"`
	PrefetchCount   int    `env:"RABBITMQ_PREFETCH_COUNT" envDefault:"1"`
}

type PubSubConfig struct {
	ProjectID          string `env:"PUBSUB_PROJECT_ID"`
	CredentialsFile    string `env:"PUBSUB_CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"PUBSUB_SUBSCRIPTION_SUFFIX" envDefault:"-sub"`
}

// LoadConfig reads settings from the environment (and .env in dev).
func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	cfg := Config{}
	_ = env.Parse(&cfg)
	return cfg
}

// Warnings reports missing settings that degrade the deployment but do
// not prevent startup. Callers surface these to operators instead of
// crashing.
func (c Config) Warnings() []string {
	var warnings []string

	if strings.TrimSpace(c.SessionSecret) == "" {
		warnings = append(warnings, "SESSION_SECRET is not set; sessions cannot be issued")
	}
	switch c.StorageBackend {
	case "minio":
		if strings.TrimSpace(c.Minio.AccessKey) == "" || strings.TrimSpace(c.Minio.SecretKey) == "" {
			warnings = append(warnings, "MINIO_ACCESS_KEY/MINIO_SECRET_KEY are not set; uploads will fail")
		}
	case "gcs":
		if strings.TrimSpace(c.GCS.Bucket) == "" {
			warnings = append(warnings, "GCS_BUCKET is not set; uploads will fail")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if c.EventBackend == "rabbitmq" && strings.TrimSpace(c.RabbitMQ.URL) == "" {
		warnings = append(warnings, "RABBITMQ_URL is not set; asset events are disabled")
	}
	if c.EventBackend == "pubsub" && strings.TrimSpace(c.PubSub.ProjectID) == "" {
		warnings = append(warnings, "PUBSUB_PROJECT_ID is not set; asset events are disabled")
	}
	return warnings
}
