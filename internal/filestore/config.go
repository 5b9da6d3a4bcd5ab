package filestore

import (
	"os"
	"strconv"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvEndpoint  = "WAREHOUSER_S3_ENDPOINT"
	EnvAccessKey = "WAREHOUSER_S3_ACCESS_KEY"
	EnvSecretKey = "WAREHOUSER_S3_SECRET_KEY"
	EnvUseSSL    = "WAREHOUSER_S3_SSL"
	EnvRegion    = "WAREHOUSER_S3_REGION"
)

// Config holds all settings needed to connect to an object store.
type Config struct {
	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	AccessKey string
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// ConfigFromEnv reads the WAREHOUSER_S3_* variables.
// An unparsable WAREHOUSER_S3_SSL counts as false.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig(os.Getenv(EnvEndpoint), os.Getenv(EnvAccessKey), os.Getenv(EnvSecretKey))
	cfg.UseSSL, _ = strconv.ParseBool(os.Getenv(EnvUseSSL))
	cfg.Region = os.Getenv(EnvRegion)
	return cfg
}
