package vectorstore

import (
	"context"
	"errors"
	"hash/fnv"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/docsearch/internal/embedding"
)

const (
	testDenseDim = 4
	testMultiDim = 4
)

// stubEmbedder derives deterministic vectors from the text hash, so equal
// texts embed identically and the staged query is reproducible.
type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(_ context.Context, query string) (embedding.Set, error) {
	return embedSet(query), nil
}

func embedSet(text string) embedding.Set {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	dense := make([]float32, testDenseDim)
	for i := range dense {
		dense[i] = float32((seed>>(i*4))%16) + 1
	}

	return embedding.Set{
		Dense: dense,
		Sparse: embedding.SparseVector{
			Indices: []uint32{seed % 97, seed % 89},
			Values:  []float32{1.5, 0.5},
		},
		Multi: [][]float32{dense, dense},
	}
}

func embedDocument(doc *Document) {
	for _, c := range doc.Chunks {
		doc.Embeddings = append(doc.Embeddings, embedSet(c))
	}
}

func setupQdrant(ctx context.Context, t *testing.T) (testcontainers.Container, string, int) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.11.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		WaitingFor:   wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	instance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := instance.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := instance.MappedPort(ctx, "6334")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, mappedPort.Port()), 2*time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 30*time.Second, 500*time.Millisecond, "Qdrant port not ready")

	// Give the gRPC service a moment after the port opens.
	time.Sleep(2 * time.Second)

	return instance, host, mappedPort.Int()
}

func TestGatewayEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	instance, host, port := setupQdrant(ctx, t)
	defer func() {
		if err := instance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	cfg := FromEndpoint(host).
		WithCollection("documents_test").
		WithDimensions(testDenseDim, testMultiDim).
		WithCompatibilityCheck(false)
	cfg.Port = port

	gateway, err := NewGateway(cfg, stubEmbedder{})
	require.NoError(t, err)
	defer gateway.Close()

	require.NoError(t, gateway.EnsureCollection(ctx))
	// Idempotent: a second call must be a no-op.
	require.NoError(t, gateway.EnsureCollection(ctx))

	now := time.Now().UTC().Truncate(time.Second)

	tenantA := Document{
		Meta: Metadata{
			DocUID:    "doc-a",
			GroupUID:  "group-a",
			UserUID:   "11111111-1111-1111-1111-111111111111",
			Title:     "alpha.pdf",
			CreatedAt: now,
		},
		Chunks: []string{
			"hybrid retrieval combines dense and sparse signals",
			"reciprocal rank fusion merges candidate lists",
			"late interaction reranking refines the final order",
		},
	}
	embedDocument(&tenantA)

	tenantB := Document{
		Meta: Metadata{
			DocUID:    "doc-b",
			GroupUID:  "group-b",
			UserUID:   "22222222-2222-2222-2222-222222222222",
			Title:     "bravo.pdf",
			CreatedAt: now,
		},
		// Identical content to tenant A: lexically and semantically the
		// closest possible match, which the tenant filter must still hide.
		Chunks: append([]string(nil), tenantA.Chunks...),
	}
	embedDocument(&tenantB)

	broken := Document{
		Meta: Metadata{GroupUID: "group-a", Title: "corrupt.docx"},
		Err:  errors.New("extraction failed"),
	}

	t.Run("upload reports processed and failed documents", func(t *testing.T) {
		report, err := gateway.Upload(ctx, []Document{tenantA, tenantB, broken})
		require.NoError(t, err)

		assert.Equal(t, 2, report.Processed)
		assert.Equal(t, 3, report.ChunkCounts["alpha.pdf"])
		assert.Equal(t, []string{"corrupt.docx"}, report.FailedTitles)
	})

	t.Run("hybrid search returns tenant results", func(t *testing.T) {
		results, err := gateway.HybridSearch(ctx, tenantA.Chunks[0], QueryFilters{GroupUID: "group-a"})
		require.NoError(t, err)
		require.NotEmpty(t, results)

		for _, r := range results {
			assert.Equal(t, "doc-a", r.DocUID)
			assert.Equal(t, tenantA.Meta.UserUID, r.OwnerUID)
		}
		assert.Equal(t, 1, results[0].Rank)
		assert.Equal(t, tenantA.Chunks[0], results[0].ChunkText)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		results, err := gateway.HybridSearch(ctx, tenantA.Chunks[1], QueryFilters{GroupUID: "group-b"})
		require.NoError(t, err)

		for _, r := range results {
			assert.Equal(t, "doc-b", r.DocUID, "cross-tenant point leaked into results")
		}
	})

	t.Run("unknown tenant yields no results", func(t *testing.T) {
		results, err := gateway.HybridSearch(ctx, tenantA.Chunks[0], QueryFilters{GroupUID: "group-zzz"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("missing tenant filter rejected before any call", func(t *testing.T) {
		_, err := gateway.HybridSearch(ctx, "anything", QueryFilters{})
		require.Error(t, err)
	})

	t.Run("time range filter", func(t *testing.T) {
		future := now.Add(24 * time.Hour)
		results, err := gateway.HybridSearch(ctx, tenantA.Chunks[0], QueryFilters{
			GroupUID: "group-a",
			From:     &future,
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("only mine filter", func(t *testing.T) {
		results, err := gateway.HybridSearch(ctx, tenantA.Chunks[0], QueryFilters{
			GroupUID: "group-a",
			UserUID:  "99999999-9999-9999-9999-999999999999",
			OnlyMine: true,
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestGatewayUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := FromEndpoint("localhost").WithCompatibilityCheck(false)
	cfg.Port = 1 // nothing listens here

	_, err := NewGateway(cfg, stubEmbedder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check")
}
