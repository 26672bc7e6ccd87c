package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
	"github.com/Aleph-Alpha/docsearch/internal/jobs"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/metrics"
	"github.com/Aleph-Alpha/docsearch/internal/notify"
	"github.com/Aleph-Alpha/docsearch/internal/registry"
	"github.com/Aleph-Alpha/docsearch/internal/vectorstore"
)

// Dispatcher accepts validated submissions. Satisfied by *jobs.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub jobs.Submission) (jobs.DispatchResult, error)
}

// TicketConsumer redeems a ticket exactly once. Satisfied by *ticket.Ledger.
type TicketConsumer interface {
	ShouldProcess(ctx context.Context, id string) (bool, error)
}

// TokenDecoder verifies a callback token. Satisfied by *token.Signer.
type TokenDecoder interface {
	Decode(token string) (map[string]any, error)
}

// Handlers carries the dependencies of the HTTP edge.
type Handlers struct {
	cfg        Config
	dispatcher Dispatcher
	tickets    TicketConsumer
	decoder    TokenDecoder
	mailer     notify.Mailer
	querier    vectorstore.Querier
	registrar  registry.Registrar
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewHandlers wires the HTTP edge.
func NewHandlers(cfg Config, dispatcher Dispatcher, tickets TicketConsumer, decoder TokenDecoder, mailer notify.Mailer, querier vectorstore.Querier, registrar registry.Registrar, m *metrics.Metrics, log *logger.Logger) *Handlers {
	return &Handlers{
		cfg:        cfg,
		dispatcher: dispatcher,
		tickets:    tickets,
		decoder:    decoder,
		mailer:     mailer,
		querier:    querier,
		registrar:  registrar,
		metrics:    m,
		log:        log,
	}
}

// documentMeta is the per-file metadata entry of a submission.
type documentMeta struct {
	Title      string `json:"title"`
	CategoryID *int64 `json:"category_id"`
}

// submitResponse is returned for an accepted submission.
type submitResponse struct {
	JobID  string `json:"job_id"`
	Ticket string `json:"ticket"`
}

// SubmitDocuments handles POST /v1/documents: multipart files plus a
// metadata JSON array of equal length.
func (h *Handlers) SubmitDocuments(c *gin.Context) {
	id, err := identityFrom(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		_ = c.Error(apperr.Wrap(apperr.KindInvalid, "malformed multipart form", err))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		_ = c.Error(apperr.New(apperr.KindInvalid, "no files in submission"))
		return
	}

	var metas []documentMeta
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metas); err != nil {
			_ = c.Error(apperr.Wrap(apperr.KindInvalid, "malformed metadata JSON", err))
			return
		}
	}
	if len(metas) != len(files) {
		_ = c.Error(apperr.Newf(apperr.KindInvalid, "got %d files but %d metadata entries", len(files), len(metas)))
		return
	}

	uploads := make([]jobs.Upload, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.KindInvalid, "unreadable upload "+fh.Filename, err))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadBytes+1))
		_ = f.Close()
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.KindInvalid, "unreadable upload "+fh.Filename, err))
			return
		}
		if int64(len(data)) > h.cfg.MaxUploadBytes {
			_ = c.Error(apperr.Newf(apperr.KindInvalid, "upload %s exceeds the %d byte limit", fh.Filename, h.cfg.MaxUploadBytes))
			return
		}

		title := metas[i].Title
		if title == "" {
			title = fh.Filename
		}
		uploads = append(uploads, jobs.Upload{
			Filename:   fh.Filename,
			Title:      title,
			CategoryID: metas[i].CategoryID,
			Data:       data,
		})
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), jobs.Submission{
		GroupUID: id.GroupUID,
		UserUID:  id.UserUID,
		Email:    id.Email,
		Uploads:  uploads,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, submitResponse{JobID: result.JobID, Ticket: result.Ticket})
}

// EmbeddingReport handles POST /v1/internal/embedding-report/:token, the
// worker's completion callback. The ticket inside the token is consumed
// exactly once; only the first delivery reaches the mailer.
func (h *Handlers) EmbeddingReport(c *gin.Context) {
	claims, err := h.decoder.Decode(c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	ticketID, _ := claims["ticket"].(string)
	if ticketID == "" {
		_ = c.Error(apperr.New(apperr.KindInvalid, "callback token carries no ticket"))
		return
	}

	var report jobs.Report
	if err := c.ShouldBindJSON(&report); err != nil {
		_ = c.Error(apperr.Wrap(apperr.KindInvalid, "malformed report body", err))
		return
	}

	first, err := h.tickets.ShouldProcess(c.Request.Context(), ticketID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !first {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	email, _ := claims["email"].(string)
	if err := h.mailer.SendCompletion(c.Request.Context(), notify.Completion{
		JobID:        report.JobID,
		Recipient:    email,
		Processed:    report.Processed,
		FailedTitles: report.FailedTitles,
	}); err != nil {
		// The ticket is already consumed; a failed mail is logged, not retried.
		h.log.Error("completion notice delivery failed", err, map[string]interface{}{"job_id": report.JobID})
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// searchResult is the external shape of one ranked hit.
type searchResult struct {
	Rank       int       `json:"rank"`
	DocUID     string    `json:"doc_uid"`
	Title      string    `json:"title,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	ChunkText  string    `json:"chunk_text"`
	CreatedAt  time.Time `json:"created_at"`
	CategoryID *int64    `json:"category_id,omitempty"`
	OwnerUID   string    `json:"owner_uid"`
	Score      float32   `json:"score"`
}

// Search handles GET /v1/search: hybrid retrieval scoped to the caller's
// tenant, enriched with registry metadata.
func (h *Handlers) Search(c *gin.Context) {
	start := time.Now()

	id, err := identityFrom(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filters := vectorstore.QueryFilters{
		GroupUID: id.GroupUID,
		UserUID:  id.UserUID,
	}

	if v := c.Query("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.KindInvalid, "malformed from timestamp", err))
			return
		}
		filters.From = &ts
	}
	if v := c.Query("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.KindInvalid, "malformed to timestamp", err))
			return
		}
		filters.To = &ts
	}
	if v := c.Query("category_ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				_ = c.Error(apperr.Wrap(apperr.KindInvalid, "malformed category_ids", err))
				return
			}
			filters.CategoryIDs = append(filters.CategoryIDs, n)
		}
	}
	filters.OnlyMine = c.Query("only_mine") == "true"

	results, err := h.querier.HybridSearch(c.Request.Context(), c.Query("q"), filters)
	if err != nil {
		h.metrics.RecordSearchDuration(start, "error")
		_ = c.Error(err)
		return
	}

	docUIDs := make([]string, 0, len(results))
	for _, r := range results {
		docUIDs = append(docUIDs, r.DocUID)
	}
	meta, err := h.registrar.ExtendMetadata(c.Request.Context(), docUIDs)
	if err != nil {
		// Enrichment is best effort; ranked chunks are still useful.
		h.log.Warn("search result enrichment failed", err)
		meta = map[string]registry.Document{}
	}

	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		row := meta[r.DocUID]
		out = append(out, searchResult{
			Rank:       r.Rank,
			DocUID:     r.DocUID,
			Title:      row.Title,
			FileName:   row.FileName,
			ChunkText:  r.ChunkText,
			CreatedAt:  r.CreatedAt,
			CategoryID: r.CategoryID,
			OwnerUID:   r.OwnerUID,
			Score:      r.Score,
		})
	}

	h.metrics.RecordSearchDuration(start, "ok")
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// Health handles GET /healthcheck.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
