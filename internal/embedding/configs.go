package embedding

import (
	"fmt"
	"os"
	"strconv"
)

// Endpoints must point to the root of each inference service (no operation
// path appended). The providers append paths automatically, so callers only
// need to supply the host base URLs.

type Config struct {
	// Inference endpoints, one per embedding space.
	DenseEndpoint  string // OpenAI-compatible dense embedding service
	SparseEndpoint string // BM25 sparse embedding service
	MultiEndpoint  string // late-interaction multi-vector embedding service

	// Model identifiers passed through to the services.
	DenseModel string
	MultiModel string

	ServiceToken string // internal service token
	HTTPTimeoutS int    // HTTP timeout seconds (default 30)
}

// NewConfig reads from environment variables.
func NewConfig() *Config {
	timeout := 30
	if v := os.Getenv("EMBEDDING_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	return &Config{
		DenseEndpoint:  os.Getenv("EMBEDDING_DENSE_ENDPOINT"),
		SparseEndpoint: os.Getenv("EMBEDDING_SPARSE_ENDPOINT"),
		MultiEndpoint:  os.Getenv("EMBEDDING_MULTI_ENDPOINT"),
		DenseModel:     os.Getenv("EMBEDDING_DENSE_MODEL"),
		MultiModel:     os.Getenv("EMBEDDING_MULTI_MODEL"),
		ServiceToken:   os.Getenv("EMBEDDING_SERVICE_TOKEN"),
		HTTPTimeoutS:   timeout,
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.DenseEndpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_DENSE_ENDPOINT")
	}
	if c.SparseEndpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_SPARSE_ENDPOINT")
	}
	if c.MultiEndpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_MULTI_ENDPOINT")
	}
	if c.DenseModel == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_DENSE_MODEL")
	}
	if c.MultiModel == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_MULTI_MODEL")
	}
	return nil
}
