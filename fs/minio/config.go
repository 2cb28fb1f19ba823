// Package minio provides a vfs.Device backed by MinIO/S3-compatible object
// storage.
package minio

import (
	"log/slog"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/fsadapter/errors"
)

// Config holds MinIO device configuration.
type Config struct {
	// Endpoint is the MinIO server address (e.g., "localhost:9000")
	Endpoint string

	// Bucket is the S3 bucket name
	Bucket string

	// AccessKey is the access key ID for authentication
	AccessKey string

	// SecretKey is the secret access key for authentication
	SecretKey string

	// UseSSL enables HTTPS connections
	UseSSL bool

	// Prefix is an optional prefix for all object keys (for namespacing)
	Prefix string

	// Client is an optional pre-configured MinIO client
	// If provided, Endpoint/AccessKey/SecretKey are ignored
	Client *minio.Client

	// MaxRenameConcurrency limits concurrent copies during directory rename
	// Default: 10
	MaxRenameConcurrency int

	// Logger receives mount notifications and upload failures
	// Default: discard
	Logger *slog.Logger
}

// validate checks if the configuration is valid.
// Either Client OR (Endpoint + Bucket + AccessKey + SecretKey) must be provided.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.MaxRenameConcurrency < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "rename concurrency must not be negative, got %d", c.MaxRenameConcurrency)
	}

	if c.Client != nil {
		return nil
	}

	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return errors.New(errors.CodeInvalidConfig, "access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return errors.New(errors.CodeInvalidConfig, "secret key is required when client is not provided")
	}

	return nil
}
