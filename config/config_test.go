package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeConfig() Config {
	return Config{
		SessionSecret:  "secret",
		StorageBackend: "minio",
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "assets",
		},
	}
}

func TestWarningsCompleteConfig(t *testing.T) {
	assert.Empty(t, completeConfig().Warnings())
}

func TestWarningsMissingSessionSecret(t *testing.T) {
	cfg := completeConfig()
	cfg.SessionSecret = "   "

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "SESSION_SECRET")
}

func TestWarningsMissingMinioCredentials(t *testing.T) {
	cfg := completeConfig()
	cfg.Minio.SecretKey = ""

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "MINIO_")
}

func TestWarningsMissingGCSBucket(t *testing.T) {
	cfg := completeConfig()
	cfg.StorageBackend = "gcs"

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "GCS_BUCKET")
}

func TestWarningsUnknownStorageBackend(t *testing.T) {
	cfg := completeConfig()
	cfg.StorageBackend = "s3"

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "STORAGE_BACKEND")
}

func TestWarningsEventBackends(t *testing.T) {
	cfg := completeConfig()
	cfg.EventBackend = "rabbitmq"
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.True(t, strings.Contains(warnings[0], "RABBITMQ_URL"))

	cfg.EventBackend = "pubsub"
	warnings = cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.True(t, strings.Contains(warnings[0], "PUBSUB_PROJECT_ID"))

	cfg.EventBackend = ""
	assert.Empty(t, cfg.Warnings())
}
