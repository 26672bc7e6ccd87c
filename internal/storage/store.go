package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// FileStore is the capability the pipeline needs from the object store.
type FileStore interface {
	Save(ctx context.Context, groupUID, filename string, data []byte) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}

var _ FileStore = (*Store)(nil)

// Store persists uploaded document files in an S3-compatible object store.
// Keys are namespaced by tenant: <group_uid>/<uuidv7><ext>, so a key alone
// identifies its tenant and keys sort by upload time within a tenant.
type Store struct {
	client *minio.Client
	cfg    Config
}

// NewStore constructs the client. Bucket existence is ensured separately at
// startup via EnsureBucket.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to initialize client: %w", err)
	}

	return &Store{client: client, cfg: cfg}, nil
}

// EnsureBucket checks if the configured bucket exists and creates it if
// necessary. Safe to call multiple times.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "checking bucket", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "creating bucket", err)
	}
	return nil
}

// Save stores the file bytes under a fresh tenant-scoped key and returns
// that key. The original filename only contributes its extension.
func (s *Store) Save(ctx context.Context, groupUID, filename string, data []byte) (string, error) {
	if groupUID == "" {
		return "", apperr.New(apperr.KindInvalid, "group_uid required for storage key")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "generating storage key", err)
	}
	key := groupUID + "/" + id.String() + strings.ToLower(path.Ext(filename))

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "storing file "+filename, err)
	}
	return key, nil
}

// Fetch reads the file bytes stored under key. A missing object is a
// KindNotFound error scoped to that one file.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "fetching file "+key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, apperr.Wrap(apperr.KindNotFound, "file "+key+" not found", err)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "reading file "+key, err)
	}
	return data, nil
}
