package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// Notifier posts completion reports back to the API process. Client errors
// are terminal; network errors and server errors are retried with
// exponential backoff up to the configured attempt budget.
type Notifier struct {
	client     *http.Client
	maxRetries uint64
}

// NewNotifier builds the report delivery client.
func NewNotifier(cfg Config) *Notifier {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &Notifier{
		client:     &http.Client{Timeout: timeout},
		maxRetries: cfg.NotifyMaxRetries,
	}
}

// Deliver posts the report to the callback URL.
func (n *Notifier) Deliver(ctx context.Context, callbackURL string, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to encode report", err)
	}

	operation := func() error {
		return n.post(ctx, callbackURL, body)
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), n.maxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "report delivery exhausted retries", err)
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The token is bad or already consumed; retrying cannot help.
		return backoff.Permanent(fmt.Errorf("callback rejected with status %d", resp.StatusCode))
	default:
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
}
