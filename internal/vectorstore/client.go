package vectorstore

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// Gateway wraps the official Qdrant Go client and owns the wire contract
// with the vector index: collection provisioning, batched point upload, and
// the staged hybrid query. It is safe for concurrent use and is constructed
// once per process.
//
// Compile-time capability checks; call sites depend on the narrow interface
// they need, not on *Gateway.
var (
	_ Uploader = (*Gateway)(nil)
	_ Querier  = (*Gateway)(nil)
)

type Gateway struct {
	api      *qdrant.Client
	cfg      *Config
	embedder QueryEmbedder
}

// NewGateway constructs a Gateway and validates connectivity via a health
// check. The Qdrant Go SDK creates lightweight gRPC connections, so this
// performs an immediate health check to fail fast if the service is
// unreachable.
func NewGateway(cfg *Config, embedder QueryEmbedder) (*Gateway, error) {
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("vectorstore: collection name cannot be empty")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   cfg.Port,
		APIKey:                 cfg.ApiKey,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: failed to initialize client: %w", err)
	}

	g := &Gateway{api: client, cfg: cfg, embedder: embedder}

	if err := g.healthCheck(); err != nil {
		return nil, fmt.Errorf("vectorstore: health check failed: %w", err)
	}
	return g, nil
}

// healthCheck verifies availability of the Qdrant service. Lightweight and
// fast, suitable for startup and readiness probes.
func (g *Gateway) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if g.api == nil {
		return fmt.Errorf("client not initialized")
	}

	if _, err := g.api.HealthCheck(ctx); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (g *Gateway) Close() error {
	if g.api == nil {
		return nil
	}
	return g.api.Close()
}
