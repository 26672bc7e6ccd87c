package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDense struct {
	fail bool
}

func (f *fakeDense) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, errors.New("dense model unreachable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), float32(len(texts[i]))}
	}
	return out, nil
}

type fakeSparse struct {
	short bool
}

func (f *fakeSparse) Embed(_ context.Context, texts []string) ([]SparseVector, error) {
	n := len(texts)
	if f.short {
		n--
	}
	out := make([]SparseVector, n)
	for i := range out {
		out[i] = SparseVector{Indices: []uint32{uint32(i)}, Values: []float32{1.0}}
	}
	return out, nil
}

type fakeMulti struct{}

func (f *fakeMulti) Embed(_ context.Context, texts []string) ([][][]float32, error) {
	out := make([][][]float32, len(texts))
	for i := range texts {
		out[i] = [][]float32{{float32(i)}, {float32(i + 1)}}
	}
	return out, nil
}

func TestEmbedChunksAligned(t *testing.T) {
	engine := NewEngineWithProviders(&fakeDense{}, &fakeSparse{}, &fakeMulti{})

	chunks := []string{"alpha", "bravo", "charlie"}
	sets, err := engine.EmbedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	for i, set := range sets {
		assert.Equal(t, float32(i), set.Dense[0], "dense vector order")
		assert.Equal(t, uint32(i), set.Sparse.Indices[0], "sparse vector order")
		assert.Equal(t, float32(i), set.Multi[0][0], "multi vector order")
	}
}

func TestEmbedChunksEmptyInput(t *testing.T) {
	engine := NewEngineWithProviders(&fakeDense{}, &fakeSparse{}, &fakeMulti{})

	sets, err := engine.EmbedChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, sets)
}

func TestEmbedChunksMisalignedProviderOutput(t *testing.T) {
	engine := NewEngineWithProviders(&fakeDense{}, &fakeSparse{short: true}, &fakeMulti{})

	_, err := engine.EmbedChunks(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misaligned")
}

func TestEmbedChunksProviderFailure(t *testing.T) {
	engine := NewEngineWithProviders(&fakeDense{fail: true}, &fakeSparse{}, &fakeMulti{})

	_, err := engine.EmbedChunks(context.Background(), []string{"a"})
	require.Error(t, err)
}

func TestEmbedQuerySingleSet(t *testing.T) {
	engine := NewEngineWithProviders(&fakeDense{}, &fakeSparse{}, &fakeMulti{})

	set, err := engine.EmbedQuery(context.Background(), "what is hybrid search")
	require.NoError(t, err)
	assert.NotEmpty(t, set.Dense)
	assert.NotEmpty(t, set.Sparse.Indices)
	assert.NotEmpty(t, set.Multi)
}

func TestWarmupFailsFastOnBrokenModel(t *testing.T) {
	engine := NewEngineWithProviders(&fakeDense{fail: true}, &fakeSparse{}, &fakeMulti{})

	err := engine.Warmup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warmup")
}

func TestDenseProviderRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pooled-v1", req.Model)

		resp := map[string]any{"data": []map[string]any{}}
		for range req.Input {
			resp["data"] = append(resp["data"].([]map[string]any), map[string]any{"embedding": []float32{0.1, 0.2}})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := newDenseProvider(&Config{
		DenseEndpoint: srv.URL,
		DenseModel:    "pooled-v1",
		ServiceToken:  "token-123",
		HTTPTimeoutS:  5,
	})

	vectors, err := p.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
}

func TestSparseProviderRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed_bm25", r.URL.Path)

		var req struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		embeddings := make([]SparseVector, len(req.Texts))
		for i := range embeddings {
			embeddings[i] = SparseVector{Indices: []uint32{7, 42}, Values: []float32{0.5, 1.5}}
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	}))
	defer srv.Close()

	p := newSparseProvider(&Config{SparseEndpoint: srv.URL, HTTPTimeoutS: 5})

	vectors, err := p.Embed(context.Background(), []string{"query text"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, []uint32{7, 42}, vectors[0].Indices)
	assert.Equal(t, []float32{0.5, 1.5}, vectors[0].Values)
}

func TestProviderErrorOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := newDenseProvider(&Config{DenseEndpoint: srv.URL, DenseModel: "m", HTTPTimeoutS: 5})

	_, err := p.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("http %d", http.StatusServiceUnavailable))
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		DenseEndpoint:  "http://dense",
		SparseEndpoint: "http://sparse",
		MultiEndpoint:  "http://multi",
		DenseModel:     "d",
		MultiModel:     "m",
	}
	require.NoError(t, cfg.Validate())

	cfg.SparseEndpoint = ""
	require.Error(t, cfg.Validate())
}
