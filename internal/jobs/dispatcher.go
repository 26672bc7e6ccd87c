package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
	"github.com/Aleph-Alpha/docsearch/internal/rabbit"
	"github.com/Aleph-Alpha/docsearch/internal/registry"
	"github.com/Aleph-Alpha/docsearch/internal/storage"
)

// TicketCreator issues a pending ticket for a new job.
type TicketCreator interface {
	Create(ctx context.Context) (string, error)
}

// TokenSigner signs the callback claims into an opaque token.
type TokenSigner interface {
	Sign(payload map[string]any) (string, error)
}

// Upload is one file of a submission, already read into memory.
type Upload struct {
	Filename   string
	Title      string
	CategoryID *int64
	Data       []byte
}

// Submission is a validated document upload request.
type Submission struct {
	GroupUID string
	UserUID  string

	// Email receives the completion notice once the job reports back.
	Email string

	Uploads []Upload
}

// DispatchResult is returned to the submitting client.
type DispatchResult struct {
	JobID  string
	Ticket string
}

// Dispatcher turns accepted submissions into persisted uploads, registry
// rows and one published ingestion job.
type Dispatcher struct {
	cfg       Config
	files     storage.FileStore
	registrar registry.Registrar
	tickets   TicketCreator
	signer    TokenSigner
	publisher rabbit.Publisher
	log       *logger.Logger
}

// NewDispatcher wires the dispatch path.
func NewDispatcher(cfg Config, files storage.FileStore, registrar registry.Registrar, tickets TicketCreator, signer TokenSigner, publisher rabbit.Publisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		files:     files,
		registrar: registrar,
		tickets:   tickets,
		signer:    signer,
		publisher: publisher,
		log:       log,
	}
}

// Dispatch persists the uploads, registers the documents, creates the
// ticket and publishes the job. Nothing is published until every upload is
// stored, so a broker failure cannot leave half a job in flight.
func (d *Dispatcher) Dispatch(ctx context.Context, sub Submission) (DispatchResult, error) {
	if sub.GroupUID == "" {
		return DispatchResult{}, apperr.New(apperr.KindInvalid, "submission requires a group_uid")
	}
	if len(sub.Uploads) == 0 {
		return DispatchResult{}, apperr.New(apperr.KindInvalid, "submission contains no files")
	}

	jobID := uuid.NewString()

	jobDocs := make([]JobDocument, 0, len(sub.Uploads))
	rows := make([]registry.Document, 0, len(sub.Uploads))
	for _, up := range sub.Uploads {
		key, err := d.files.Save(ctx, sub.GroupUID, up.Filename, up.Data)
		if err != nil {
			return DispatchResult{}, err
		}

		docUID := uuid.NewString()
		format := strings.TrimPrefix(strings.ToLower(path.Ext(up.Filename)), ".")

		jobDocs = append(jobDocs, JobDocument{
			DocUID:     docUID,
			Title:      up.Title,
			StorageKey: key,
			Format:     format,
			CategoryID: up.CategoryID,
		})
		rows = append(rows, registry.Document{
			UID:        docUID,
			GroupUID:   sub.GroupUID,
			UserUID:    sub.UserUID,
			Title:      up.Title,
			FileName:   up.Filename,
			StorageKey: key,
			Format:     format,
			CategoryID: up.CategoryID,
		})
	}

	if err := d.registrar.AddDocuments(ctx, rows); err != nil {
		return DispatchResult{}, err
	}

	ticketID, err := d.tickets.Create(ctx)
	if err != nil {
		return DispatchResult{}, err
	}

	callbackToken, err := d.signer.Sign(map[string]any{
		"ticket": ticketID,
		"email":  sub.Email,
		"job_id": jobID,
	})
	if err != nil {
		return DispatchResult{}, err
	}

	job := IngestJob{
		JobID:       jobID,
		GroupUID:    sub.GroupUID,
		UserUID:     sub.UserUID,
		Ticket:      ticketID,
		CallbackURL: fmt.Sprintf("%s/v1/internal/embedding-report/%s", strings.TrimRight(d.cfg.CallbackBaseURL, "/"), callbackToken),
		Documents:   jobDocs,
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return DispatchResult{}, apperr.Wrap(apperr.KindInternal, "failed to encode job", err)
	}

	if err := d.publisher.Publish(ctx, payload, map[string]interface{}{"job-id": jobID}); err != nil {
		return DispatchResult{}, apperr.Wrap(apperr.KindUnavailable, "failed to publish job", err)
	}

	d.log.Info("dispatched ingestion job", nil, map[string]interface{}{
		"job_id":    jobID,
		"group_uid": sub.GroupUID,
		"documents": len(jobDocs),
	})

	return DispatchResult{JobID: jobID, Ticket: ticketID}, nil
}
