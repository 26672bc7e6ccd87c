package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
	"github.com/Aleph-Alpha/docsearch/internal/jobs"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/metrics"
	"github.com/Aleph-Alpha/docsearch/internal/notify"
	"github.com/Aleph-Alpha/docsearch/internal/registry"
	"github.com/Aleph-Alpha/docsearch/internal/token"
	"github.com/Aleph-Alpha/docsearch/internal/vectorstore"
)

type fakeDispatcher struct {
	got    jobs.Submission
	result jobs.DispatchResult
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, sub jobs.Submission) (jobs.DispatchResult, error) {
	f.got = sub
	if f.err != nil {
		return jobs.DispatchResult{}, f.err
	}
	return f.result, nil
}

type fakeTicketConsumer struct {
	first map[string]bool
}

func (f *fakeTicketConsumer) ShouldProcess(_ context.Context, id string) (bool, error) {
	if f.first == nil {
		f.first = map[string]bool{}
	}
	if f.first[id] {
		return false, nil
	}
	f.first[id] = true
	return true, nil
}

type fakeMailer struct {
	sent []notify.Completion
}

func (f *fakeMailer) SendCompletion(_ context.Context, c notify.Completion) error {
	f.sent = append(f.sent, c)
	return nil
}

type fakeQuerier struct {
	got     vectorstore.QueryFilters
	results []vectorstore.SearchResult
	err     error
}

func (f *fakeQuerier) HybridSearch(_ context.Context, query string, filters vectorstore.QueryFilters) ([]vectorstore.SearchResult, error) {
	f.got = filters
	if f.err != nil {
		return nil, f.err
	}
	if query == "" {
		return nil, apperr.New(apperr.KindInvalid, "query text cannot be empty")
	}
	if filters.GroupUID == "" {
		return nil, apperr.New(apperr.KindInvalid, "query filters require a group_uid")
	}
	return f.results, nil
}

type fakeMetaRegistrar struct {
	rows map[string]registry.Document
}

func (f *fakeMetaRegistrar) AddDocuments(context.Context, []registry.Document) error { return nil }

func (f *fakeMetaRegistrar) ExtendMetadata(_ context.Context, uids []string) (map[string]registry.Document, error) {
	out := map[string]registry.Document{}
	for _, uid := range uids {
		if row, ok := f.rows[uid]; ok {
			out[uid] = row
		}
	}
	return out, nil
}

type testEdge struct {
	router     http.Handler
	dispatcher *fakeDispatcher
	mailer     *fakeMailer
	querier    *fakeQuerier
	signer     *token.Signer
}

func newTestEdge(t *testing.T) *testEdge {
	t.Helper()
	return newTestEdgeWithConfig(t, DefaultConfig())
}

func newTestEdgeWithConfig(t *testing.T, cfg Config) *testEdge {
	t.Helper()

	signer, err := token.NewSigner(token.Config{Secret: "test-secret"})
	require.NoError(t, err)

	dispatcher := &fakeDispatcher{result: jobs.DispatchResult{JobID: "job-1", Ticket: "ticket-1"}}
	mailer := &fakeMailer{}
	querier := &fakeQuerier{}

	log := &logger.Logger{Zap: zap.NewNop()}
	h := NewHandlers(
		cfg,
		dispatcher,
		&fakeTicketConsumer{},
		signer,
		mailer,
		querier,
		&fakeMetaRegistrar{rows: map[string]registry.Document{
			"doc-1": {UID: "doc-1", Title: "alpha", FileName: "alpha.pdf"},
		}},
		metrics.NewMetrics(metrics.Config{Address: ":0", ServiceName: "test"}),
		log,
	)

	return &testEdge{
		router:     NewRouter(h, log),
		dispatcher: dispatcher,
		mailer:     mailer,
		querier:    querier,
		signer:     signer,
	}
}

func multipartSubmission(t *testing.T, files map[string]string, metadata string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if metadata != "" {
		require.NoError(t, w.WriteField("metadata", metadata))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitDocuments(t *testing.T) {
	edge := newTestEdge(t)

	body, contentType := multipartSubmission(t,
		map[string]string{"alpha.pdf": "pdf-bytes"},
		`[{"title":"alpha","category_id":3}]`,
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Group-UID", "group-1")
	req.Header.Set("X-User-UID", "user-1")
	req.Header.Set("X-User-Email", "user@example.com")

	rec := httptest.NewRecorder()
	edge.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, "ticket-1", resp.Ticket)

	sub := edge.dispatcher.got
	assert.Equal(t, "group-1", sub.GroupUID)
	assert.Equal(t, "user@example.com", sub.Email)
	require.Len(t, sub.Uploads, 1)
	assert.Equal(t, "alpha", sub.Uploads[0].Title)
	require.NotNil(t, sub.Uploads[0].CategoryID)
	assert.Equal(t, int64(3), *sub.Uploads[0].CategoryID)
	assert.Equal(t, []byte("pdf-bytes"), sub.Uploads[0].Data)
}

func TestSubmitDocumentsRejectsOversizedUpload(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 10
	edge := newTestEdgeWithConfig(t, cfg)

	body, contentType := multipartSubmission(t,
		map[string]string{"big.txt": strings.Repeat("x", 100)},
		`[{"title":"big"}]`,
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Group-UID", "group-1")

	rec := httptest.NewRecorder()
	edge.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "byte limit")
	assert.Empty(t, edge.dispatcher.got.Uploads)
}

func TestSubmitDocumentsValidation(t *testing.T) {
	edge := newTestEdge(t)

	t.Run("metadata length mismatch", func(t *testing.T) {
		body, contentType := multipartSubmission(t,
			map[string]string{"a.pdf": "x", "b.pdf": "y"},
			`[{"title":"only one"}]`,
		)
		req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Group-UID", "group-1")

		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "metadata")
	})

	t.Run("missing tenant header", func(t *testing.T) {
		body, contentType := multipartSubmission(t, map[string]string{"a.pdf": "x"}, `[{}]`)
		req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "X-Group-UID")
	})

	t.Run("dispatch failure maps to service unavailable", func(t *testing.T) {
		edge := newTestEdge(t)
		edge.dispatcher.err = apperr.New(apperr.KindUnavailable, "broker down")

		body, contentType := multipartSubmission(t, map[string]string{"a.pdf": "x"}, `[{}]`)
		req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Group-UID", "group-1")

		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestEmbeddingReport(t *testing.T) {
	edge := newTestEdge(t)

	callbackToken, err := edge.signer.Sign(map[string]any{
		"ticket": "ticket-9",
		"email":  "user@example.com",
		"job_id": "job-9",
	})
	require.NoError(t, err)

	report := `{"job_id":"job-9","processed":2,"chunk_counts":{"alpha":3},"failed_titles":["broken.docx"]}`
	url := "/v1/internal/embedding-report/" + callbackToken

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(report))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Contains(t, first.Body.String(), "accepted")

	require.Len(t, edge.mailer.sent, 1)
	sent := edge.mailer.sent[0]
	assert.Equal(t, "job-9", sent.JobID)
	assert.Equal(t, "user@example.com", sent.Recipient)
	assert.Equal(t, 2, sent.Processed)
	assert.Equal(t, []string{"broken.docx"}, sent.FailedTitles)

	second := post()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")
	assert.Len(t, edge.mailer.sent, 1, "duplicate delivery must not notify again")
}

func TestEmbeddingReportBadToken(t *testing.T) {
	edge := newTestEdge(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/embedding-report/not-a-token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	edge.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearch(t *testing.T) {
	edge := newTestEdge(t)
	created := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	edge.querier.results = []vectorstore.SearchResult{
		{Rank: 1, DocUID: "doc-1", ChunkText: "ranked chunk", CreatedAt: created, OwnerUID: "user-1", Score: 0.9},
		{Rank: 2, DocUID: "doc-unknown", ChunkText: "other chunk", CreatedAt: created, OwnerUID: "user-2", Score: 0.5},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=ranked&category_ids=1,2&only_mine=true&from=2025-01-01T00:00:00Z", nil)
	req.Header.Set("X-Group-UID", "group-1")
	req.Header.Set("X-User-UID", "user-1")

	rec := httptest.NewRecorder()
	edge.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []searchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "alpha", resp.Results[0].Title, "known doc enriched from registry")
	assert.Equal(t, "alpha.pdf", resp.Results[0].FileName)
	assert.Empty(t, resp.Results[1].Title, "unknown doc stays unenriched")

	assert.Equal(t, "group-1", edge.querier.got.GroupUID)
	assert.Equal(t, []int64{1, 2}, edge.querier.got.CategoryIDs)
	assert.True(t, edge.querier.got.OnlyMine)
	require.NotNil(t, edge.querier.got.From)
}

func TestSearchValidation(t *testing.T) {
	edge := newTestEdge(t)

	t.Run("missing tenant header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/search?q=x", nil)
		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
		req.Header.Set("X-Group-UID", "group-1")
		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/search?q=x&from=yesterday", nil)
		req.Header.Set("X-Group-UID", "group-1")
		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed category ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/search?q=x&category_ids=a,b", nil)
		req.Header.Set("X-Group-UID", "group-1")
		rec := httptest.NewRecorder()
		edge.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthcheck(t *testing.T) {
	edge := newTestEdge(t)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	edge.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
