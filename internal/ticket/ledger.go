package ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// Ticket states stored as the key's value.
const (
	StatePending  = "pending"
	StateConsumed = "consumed"
)

const keyPrefix = "ticket:"

// Ledger records one idempotency ticket per ingestion job and guarantees
// at-most-one "should process" outcome per ticket. All state lives in Redis;
// the ledger holds no in-process state, so any number of processes can share
// one ledger safely.
type Ledger struct {
	client redis.UniversalClient
	cfg    Config
}

// NewLedger connects to Redis and verifies the connection with a ping.
func NewLedger(cfg Config) (*Ledger, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "connecting to ticket store", err)
	}

	return &Ledger{client: client, cfg: cfg}, nil
}

// NewLedgerWithClient wraps an existing Redis client, used by tests.
func NewLedgerWithClient(client redis.UniversalClient, cfg Config) *Ledger {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	return &Ledger{client: client, cfg: cfg}
}

// Create issues a fresh ticket in state PENDING with the configured TTL and
// returns its opaque id.
func (l *Ledger) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()

	if err := l.client.Set(ctx, keyPrefix+id, StatePending, l.cfg.TTL).Err(); err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "storing ticket", err)
	}
	return id, nil
}

// ShouldProcess performs the single atomic check-and-set on a ticket: if its
// current state is PENDING it transitions to CONSUMED and returns true;
// any other outcome (already consumed, unknown, expired) returns false with
// no error. Atomicity is delegated to a single SET XX GET KEEPTTL on the
// backing store, so concurrent deliveries of the same ticket observe exactly
// one true result.
func (l *Ledger) ShouldProcess(ctx context.Context, id string) (bool, error) {
	prev, err := l.client.SetArgs(ctx, keyPrefix+id, StateConsumed, redis.SetArgs{
		Mode:    "XX",
		Get:     true,
		KeepTTL: true,
	}).Result()

	if errors.Is(err, redis.Nil) {
		// Unknown or expired ticket: a late callback is silently dropped.
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.KindUnavailable, "consuming ticket", err)
	}

	return prev == StatePending, nil
}

// Close releases the underlying Redis connection pool.
func (l *Ledger) Close() error {
	return l.client.Close()
}
