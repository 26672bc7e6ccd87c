package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// denseProvider calls an OpenAI-compatible /embeddings endpoint.
type denseProvider struct {
	httpPoster
	baseURL string
	model   string
}

func newDenseProvider(cfg *Config) *denseProvider {
	return &denseProvider{
		httpPoster: newPoster(cfg),
		baseURL:    strings.TrimRight(cfg.DenseEndpoint, "/"),
		model:      cfg.DenseModel,
	}
}

func (p *denseProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("inference: no texts provided")
	}

	reqBody := map[string]any{
		"model": p.model,
		"input": texts,
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	url := fmt.Sprintf("%s/embeddings", p.baseURL)
	if err := p.postJSON(ctx, url, reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("inference: expected %d dense embeddings, got %d", len(texts), len(parsed.Data))
	}

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// sparseProvider calls a BM25 sparse embedding endpoint.
type sparseProvider struct {
	httpPoster
	baseURL string
}

func newSparseProvider(cfg *Config) *sparseProvider {
	return &sparseProvider{
		httpPoster: newPoster(cfg),
		baseURL:    strings.TrimRight(cfg.SparseEndpoint, "/"),
	}
}

func (p *sparseProvider) Embed(ctx context.Context, texts []string) ([]SparseVector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("inference: no texts provided")
	}

	reqBody := map[string]any{
		"texts": texts,
	}

	var parsed struct {
		Embeddings []SparseVector `json:"embeddings"`
	}

	url := fmt.Sprintf("%s/embed_bm25", p.baseURL)
	if err := p.postJSON(ctx, url, reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("inference: expected %d sparse embeddings, got %d", len(texts), len(parsed.Embeddings))
	}
	return parsed.Embeddings, nil
}

// multiProvider calls a late-interaction multi-vector embedding endpoint
// that returns one vector per token.
type multiProvider struct {
	httpPoster
	baseURL string
	model   string
}

func newMultiProvider(cfg *Config) *multiProvider {
	return &multiProvider{
		httpPoster: newPoster(cfg),
		baseURL:    strings.TrimRight(cfg.MultiEndpoint, "/"),
		model:      cfg.MultiModel,
	}
}

func (p *multiProvider) Embed(ctx context.Context, texts []string) ([][][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("inference: no texts provided")
	}

	reqBody := map[string]any{
		"model": p.model,
		"input": texts,
	}

	var parsed struct {
		Data []struct {
			Embedding [][]float32 `json:"embedding"`
		} `json:"data"`
	}

	url := fmt.Sprintf("%s/embeddings", p.baseURL)
	if err := p.postJSON(ctx, url, reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("inference: expected %d multi embeddings, got %d", len(texts), len(parsed.Data))
	}

	out := make([][][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func newPoster(cfg *Config) httpPoster {
	return httpPoster{
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
	}
}
