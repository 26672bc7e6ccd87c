package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

func TestStoreRegistryOperations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	host, port, containerInstance := initializePostgres(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	cfg := DefaultConfig()
	cfg.Connection.Host = host
	cfg.Connection.Port = port
	cfg.Connection.User = "docsearch"
	cfg.Connection.Password = "docsearch"
	cfg.Connection.DbName = "docsearch"

	store, err := NewStore(cfg, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.GracefulShutdown())
	}()

	require.NoError(t, store.Migrate())

	category := int64(7)
	docs := []Document{
		{
			UID:        uuid.NewString(),
			GroupUID:   "group-1",
			UserUID:    uuid.NewString(),
			Title:      "alpha",
			FileName:   "alpha.pdf",
			StorageKey: "group-1/alpha.pdf",
			Format:     "pdf",
			CategoryID: &category,
		},
		{
			UID:      uuid.NewString(),
			GroupUID: "group-1",
			UserUID:  uuid.NewString(),
			Title:    "beta",
			FileName: "beta.txt",
			Format:   "txt",
		},
	}

	t.Run("add and extend", func(t *testing.T) {
		require.NoError(t, store.AddDocuments(ctx, docs))

		got, err := store.ExtendMetadata(ctx, []string{docs[0].UID, docs[1].UID, "unknown-uid"})
		require.NoError(t, err)
		require.Len(t, got, 2)

		alpha := got[docs[0].UID]
		assert.Equal(t, "alpha", alpha.Title)
		assert.Equal(t, "alpha.pdf", alpha.FileName)
		require.NotNil(t, alpha.CategoryID)
		assert.Equal(t, int64(7), *alpha.CategoryID)
		assert.False(t, alpha.CreatedAt.IsZero())

		beta := got[docs[1].UID]
		assert.Equal(t, "beta", beta.Title)
		assert.Nil(t, beta.CategoryID)
	})

	t.Run("duplicate uid conflicts", func(t *testing.T) {
		err := store.AddDocuments(ctx, []Document{{
			UID:      docs[0].UID,
			GroupUID: "group-1",
			Title:    "alpha again",
		}})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("missing identifiers rejected", func(t *testing.T) {
		err := store.AddDocuments(ctx, []Document{{Title: "orphan"}})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	})

	t.Run("empty inputs are no-ops", func(t *testing.T) {
		require.NoError(t, store.AddDocuments(ctx, nil))

		got, err := store.ExtendMetadata(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func initializePostgres(ctx context.Context, t *testing.T) (string, string, testcontainers.Container) {
	containerInstance, err := createPostgresContainer(ctx)
	require.NoError(t, err)

	port, err := containerInstance.MappedPort(ctx, "5432")
	require.NoError(t, err)

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)

	return host, port.Port(), containerInstance
}

func createPostgresContainer(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     "docsearch",
			"POSTGRES_PASSWORD": "docsearch",
			"POSTGRES_DB":       "docsearch",
		},
		ExposedPorts: []string{
			"5432/tcp",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, lastErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if lastErr == nil {
			return containerInstance, nil
		}

		if strings.Contains(lastErr.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}
		break
	}
	return nil, lastErr
}
