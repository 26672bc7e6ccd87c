package storage

import "os"

// Config holds the connection settings for the object store backing
// uploaded document files.
type Config struct {
	// Endpoint is the S3-compatible host:port, e.g. "localhost:9000".
	Endpoint string `yaml:"endpoint" envconfig:"STORAGE_ENDPOINT"`

	// AccessKeyID and SecretAccessKey authenticate against the store.
	AccessKeyID     string `yaml:"access_key_id" envconfig:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"STORAGE_SECRET_ACCESS_KEY"`

	// Bucket is the single bucket all document files live in.
	// Default: "documents"
	Bucket string `yaml:"bucket" envconfig:"STORAGE_BUCKET"`

	// UseSSL enables TLS for the connection.
	UseSSL bool `yaml:"use_ssl" envconfig:"STORAGE_USE_SSL"`
}

// DefaultBucket is used when no bucket is configured.
const DefaultBucket = "documents"

// NewConfig builds a Config from the environment.
func NewConfig() Config {
	cfg := Config{
		Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
		AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		Bucket:          os.Getenv("STORAGE_BUCKET"),
		UseSSL:          os.Getenv("STORAGE_USE_SSL") == "true",
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	return cfg
}
