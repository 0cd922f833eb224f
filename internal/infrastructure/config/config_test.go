package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"ORDERSIGHT_APP_NAME":          os.Getenv("ORDERSIGHT_APP_NAME"),
		"ORDERSIGHT_APP_ENV":           os.Getenv("ORDERSIGHT_APP_ENV"),
		"ORDERSIGHT_APP_PORT":          os.Getenv("ORDERSIGHT_APP_PORT"),
		"ORDERSIGHT_DATABASE_HOST":     os.Getenv("ORDERSIGHT_DATABASE_HOST"),
		"ORDERSIGHT_DATABASE_PORT":     os.Getenv("ORDERSIGHT_DATABASE_PORT"),
		"ORDERSIGHT_DATABASE_USER":     os.Getenv("ORDERSIGHT_DATABASE_USER"),
		"ORDERSIGHT_DATABASE_PASSWORD": os.Getenv("ORDERSIGHT_DATABASE_PASSWORD"),
		"ORDERSIGHT_DATABASE_DBNAME":   os.Getenv("ORDERSIGHT_DATABASE_DBNAME"),
		"ORDERSIGHT_DATABASE_SSLMODE":  os.Getenv("ORDERSIGHT_DATABASE_SSLMODE"),
		"ORDERSIGHT_STORAGE_DRIVER":    os.Getenv("ORDERSIGHT_STORAGE_DRIVER"),
		"ORDERSIGHT_STORAGE_BUCKET":    os.Getenv("ORDERSIGHT_STORAGE_BUCKET"),
		"ORDERSIGHT_REDIS_HOST":        os.Getenv("ORDERSIGHT_REDIS_HOST"),
		"ORDERSIGHT_INGEST_QUEUE_NAME": os.Getenv("ORDERSIGHT_INGEST_QUEUE_NAME"),
		"ORDERSIGHT_JWT_SECRET":        os.Getenv("ORDERSIGHT_JWT_SECRET"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ordersight-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "ordersight", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, "local", cfg.Storage.Driver)
		assert.Equal(t, "ingest:tasks", cfg.Ingest.QueueName)
		assert.Equal(t, 2, cfg.Ingest.Concurrency)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("loads values from environment variables", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERSIGHT_APP_NAME", "test-app")
		os.Setenv("ORDERSIGHT_DATABASE_HOST", "testdb.local")
		os.Setenv("ORDERSIGHT_DATABASE_PORT", "5433")
		os.Setenv("ORDERSIGHT_STORAGE_DRIVER", "s3")
		os.Setenv("ORDERSIGHT_STORAGE_BUCKET", "test-bucket")
		os.Setenv("ORDERSIGHT_REDIS_HOST", "cache.local")
		os.Setenv("ORDERSIGHT_INGEST_QUEUE_NAME", "test:queue")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "s3", cfg.Storage.Driver)
		assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, "test:queue", cfg.Ingest.QueueName)
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERSIGHT_STORAGE_DRIVER", "ftp")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires secrets", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERSIGHT_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects local storage", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERSIGHT_APP_ENV", "production")
		os.Setenv("ORDERSIGHT_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("ORDERSIGHT_DATABASE_PASSWORD", "secret")
		os.Setenv("ORDERSIGHT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.driver")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss:word/1",
		DBName:   "ordersight",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss:word/1")
}
