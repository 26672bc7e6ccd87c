package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

// Store wraps the registry database connection. The active *gorm.DB is held
// in an atomic pointer so reconnection can swap it without blocking readers.
type Store struct {
	cfg Config
	log *logger.Logger

	client          atomic.Pointer[gorm.DB]
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeRetryChanOnce sync.Once
	closeShutdownOnce  sync.Once
}

// NewStore connects to PostgreSQL and returns the registry store.
func NewStore(cfg Config, log *logger.Logger) (*Store, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		cfg:             cfg,
		log:             log,
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	s.client.Store(conn)
	return s, nil
}

func connect(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Connection.Host,
		cfg.Connection.Port,
		cfg.Connection.User,
		cfg.Connection.Password,
		cfg.Connection.DbName,
		cfg.Connection.SSLMode)

	db, err := gorm.Open(
		postgres.Open(dsn),
		&gorm.Config{
			TranslateError: true,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to registry database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry database instance: %w", err)
	}

	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = DefaultMaxOpenConns
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleConns
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = DefaultConnMaxLifetime
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return db, nil
}

// DB returns the current connection snapshot.
func (s *Store) DB() *gorm.DB {
	return s.client.Load()
}

// Migrate creates or updates the documents table.
func (s *Store) Migrate() error {
	return s.DB().AutoMigrate(&Document{})
}

// MonitorConnection pings the database every 10 seconds and signals the
// retry loop on failure. Run it in a goroutine.
func (s *Store) MonitorConnection(ctx context.Context) {
	defer s.closeRetryChanOnce.Do(func() {
		close(s.retryChanSignal)
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.healthCheck(); err != nil {
				select {
				case s.retryChanSignal <- err:
				default:
				}
			}
		}
	}
}

// RetryConnection re-establishes the connection when signalled by the
// monitor. Run it in a goroutine.
func (s *Store) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-s.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case err, ok := <-s.retryChanSignal:
			if !ok {
				return
			}
			s.log.Warn("registry database connection unhealthy, reconnecting", err)
			for {
				select {
				case <-s.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := connect(s.cfg)
					if err != nil {
						s.log.Error("registry database reconnection failed", err)
						time.Sleep(time.Second)
						continue
					}
					s.client.Store(newConn)
					s.log.Info("reconnected to registry database", nil)
					continue outerLoop
				}
			}
		}
	}
}

func (s *Store) healthCheck() error {
	db := s.DB()
	if db == nil {
		return fmt.Errorf("registry database client is not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get registry database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("registry database ping failed during health check: %w", err)
	}
	return nil
}

// GracefulShutdown stops the supervision goroutines and closes the pool.
func (s *Store) GracefulShutdown() error {
	s.closeShutdownOnce.Do(func() {
		close(s.shutdownSignal)
	})

	db := s.DB()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
