package chunk

import (
	"os"
	"strconv"
)

const (
	// DefaultMinContextLength is the minimum cumulative character length a
	// chunk accumulates before it is emitted.
	DefaultMinContextLength = 1500

	// DefaultChunkSize is the target chunk size for retrieval-time splitting
	// of arbitrary plain text.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters carried over between
	// consecutive retrieval-time chunks.
	DefaultChunkOverlap = 100
)

type Config struct {
	MinContextLength int `yaml:"min_context_length" envconfig:"CHUNK_MIN_CONTEXT_LENGTH"`
	ChunkSize        int `yaml:"chunk_size" envconfig:"CHUNK_SIZE"`
	ChunkOverlap     int `yaml:"chunk_overlap" envconfig:"CHUNK_OVERLAP"`
}

// DefaultConfig returns a Config populated with the default chunking policy.
func DefaultConfig() Config {
	return Config{
		MinContextLength: DefaultMinContextLength,
		ChunkSize:        DefaultChunkSize,
		ChunkOverlap:     DefaultChunkOverlap,
	}
}

// NewConfig builds a Config from defaults overridden by the environment.
func NewConfig() Config {
	cfg := DefaultConfig()
	for key, dst := range map[string]*int{
		"CHUNK_MIN_CONTEXT_LENGTH": &cfg.MinContextLength,
		"CHUNK_SIZE":               &cfg.ChunkSize,
		"CHUNK_OVERLAP":            &cfg.ChunkOverlap,
	} {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}
	return cfg
}
