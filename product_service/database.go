package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type DatabaseState string

const (
	DatabaseConnecting DatabaseState = "connecting"
	DatabaseReady      DatabaseState = "ready"
	DatabaseDegraded   DatabaseState = "degraded"
)

var ErrDatabaseUnavailable = errors.New("database unavailable")

// DatabaseProvider hands out the database handle once a connection exists.
type DatabaseProvider interface {
	Database() (*mongo.Database, error)
}

type databaseClient interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
	Disconnect(ctx context.Context) error
}

type connectFunc func(ctx context.Context, uri string, timeout time.Duration) (databaseClient, error)

func connectMongo(ctx context.Context, uri string, timeout time.Duration) (databaseClient, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetAppName(ServiceName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return client, nil
}

// DatabaseSupervisor owns the MongoDB client. It connects in the background,
// retrying with exponential backoff, and keeps pinging the server so that
// readiness follows connectivity.
type DatabaseSupervisor struct {
	uri            string
	name           string
	connectTimeout time.Duration
	healthInterval time.Duration
	retryInterval  time.Duration

	connect   connectFunc
	onConnect func(ctx context.Context, db *mongo.Database) error
	onChange  []func(DatabaseState)

	mu     sync.RWMutex
	client databaseClient
	db     *mongo.Database
	state  DatabaseState
}

func NewDatabaseSupervisor(cfg Config) *DatabaseSupervisor {
	return &DatabaseSupervisor{
		uri:            ComposeConnectionURI(cfg),
		name:           cfg.DatabaseName,
		connectTimeout: cfg.DBConnectTimeout,
		healthInterval: cfg.DBHealthInterval,
		retryInterval:  500 * time.Millisecond,
		connect:        connectMongo,
		state:          DatabaseConnecting,
	}
}

// OnConnect registers a hook run after the first successful ping. The
// supervisor only becomes ready once the hook succeeds.
func (s *DatabaseSupervisor) OnConnect(fn func(ctx context.Context, db *mongo.Database) error) {
	s.onConnect = fn
}

// OnStateChange registers a listener called on every state transition.
func (s *DatabaseSupervisor) OnStateChange(fn func(DatabaseState)) {
	s.onChange = append(s.onChange, fn)
}

func (s *DatabaseSupervisor) State() DatabaseState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *DatabaseSupervisor) Database() (*mongo.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	return s.db, nil
}

// Run blocks until ctx is cancelled. Connection failures never end it.
func (s *DatabaseSupervisor) Run(ctx context.Context) error {
	if err := s.connectWithRetry(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *DatabaseSupervisor) connectWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	operation := func() error {
		return s.connectOnce(ctx)
	}
	notify := func(err error, next time.Duration) {
		slog.Error("Error connecting to MongoDB", "err", err, "retry_in", next)
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}

func (s *DatabaseSupervisor) connectOnce(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		connected, err := s.connect(ctx, s.uri, s.connectTimeout)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.client = connected
		s.mu.Unlock()
		client = connected
	}

	if err := s.ping(ctx, client); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(s.name)

	// readiness waits for the hook; a failure is retried on the same client
	if s.onConnect != nil {
		if err := s.onConnect(ctx, db); err != nil {
			return fmt.Errorf("failed to prepare database: %w", err)
		}
	}

	s.mu.Lock()
	s.db = db
	s.mu.Unlock()

	slog.Info("Connected to MongoDB successfully", "database", s.name)
	s.setState(DatabaseReady)
	return nil
}

func (s *DatabaseSupervisor) check(ctx context.Context) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return
	}

	if err := s.ping(ctx, client); err != nil {
		if ctx.Err() != nil {
			return
		}
		if s.State() != DatabaseDegraded {
			slog.Error("Lost connection to MongoDB", "err", err)
		}
		s.setState(DatabaseDegraded)
		return
	}

	if s.State() != DatabaseReady {
		slog.Info("Connection to MongoDB restored")
	}
	s.setState(DatabaseReady)
}

func (s *DatabaseSupervisor) ping(ctx context.Context, client databaseClient) error {
	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}

func (s *DatabaseSupervisor) setState(state DatabaseState) {
	s.mu.Lock()
	previous := s.state
	s.state = state
	s.mu.Unlock()

	if previous == state {
		return
	}
	for _, fn := range s.onChange {
		fn(state)
	}
}

func (s *DatabaseSupervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.db = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
