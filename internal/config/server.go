// Package config provides configuration management for CampusHQ.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// SnapshotBackend selects where backup blobs are stored.
type SnapshotBackend string

const (
	// BackendFS stores blobs on the local filesystem.
	BackendFS SnapshotBackend = "fs"
	// BackendS3 stores blobs in an S3-compatible bucket.
	BackendS3 SnapshotBackend = "s3"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment Environment
	ListenAddr  string
	DatabaseURL string

	// Snapshot storage
	SnapshotBackend SnapshotBackend
	SnapshotDir     string // fs backend
	S3Bucket        string
	S3Region        string
	S3Endpoint      string // optional, for S3-compatible stores
	S3AccessKey     string
	S3SecretKey     string

	// Key material, base64-encoded
	MasterKey        string
	SigningSeed      string
	SigningPublicKey string

	// Background processing
	WorkerCount     int
	TaskQueueSize   int
	MaxTaskDuration time.Duration

	// RetentionPeriod is how long completed backups stay downloadable.
	// Zero disables expiry.
	RetentionPeriod time.Duration
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	backend := SnapshotBackend(strings.ToLower(getEnv("SNAPSHOT_BACKEND", string(BackendFS))))
	if backend != BackendFS && backend != BackendS3 {
		backend = BackendFS
	}

	return ServerConfig{
		Environment: env,
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SnapshotBackend: backend,
		SnapshotDir:     getEnv("SNAPSHOT_DIR", "/var/lib/campushq/snapshots"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),

		MasterKey:        os.Getenv("MASTER_KEY"),
		SigningSeed:      os.Getenv("SIGNING_SEED"),
		SigningPublicKey: os.Getenv("SIGNING_PUBLIC_KEY"),

		WorkerCount:     getEnvInt("WORKER_COUNT", 4),
		TaskQueueSize:   getEnvInt("TASK_QUEUE_SIZE", 64),
		MaxTaskDuration: time.Duration(getEnvInt("MAX_TASK_SECONDS", 60)) * time.Second,

		RetentionPeriod: time.Duration(getEnvInt("RETENTION_DAYS", 30)) * 24 * time.Hour,
	}
}

// Validate checks that required settings are present.
func (c ServerConfig) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.MasterKey == "" {
		return errors.New("MASTER_KEY is required")
	}
	if c.SigningSeed == "" && c.SigningPublicKey == "" {
		return errors.New("SIGNING_SEED or SIGNING_PUBLIC_KEY is required")
	}
	if c.SnapshotBackend == BackendS3 && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for the %s backend", BackendS3)
	}
	return nil
}

// getEnv reads a string from an environment variable, returning the default if unset.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
