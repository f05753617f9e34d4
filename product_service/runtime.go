package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/akmmp241/product-catalog/shared"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type ServiceState string

const (
	ServiceConfigured ServiceState = "configured"
	ServiceListening  ServiceState = "listening"
	ServiceDegraded   ServiceState = "degraded"
)

// ListenBindError reports that a configured port could not be bound.
type ListenBindError struct {
	Addr string
	Err  error
}

func (e *ListenBindError) Error() string {
	return fmt.Sprintf("listen on %s: %v", e.Addr, e.Err)
}

func (e *ListenBindError) Unwrap() error {
	return e.Err
}

type listenFunc func(network, addr string) (net.Listener, error)

// Runtime owns every long lived component of the product service.
type Runtime struct {
	cfg       Config
	app       *AppServer
	grpc      *GrpcServer
	db        *DatabaseSupervisor
	cache     ProductCache
	publisher ProductEventPublisher
	listen    listenFunc
	listening atomic.Bool
}

// NewRuntime wires the service from cfg. It performs no network I/O.
func NewRuntime(cfg Config) (*Runtime, error) {
	db := NewDatabaseSupervisor(cfg)
	db.OnConnect(EnsureIndexes)

	var cache ProductCache = noopProductCache{}
	if cfg.RedisAddr != "" {
		cache = NewRedisProductCache(shared.NewRedis(cfg.RedisAddr), cfg.ProductCacheTTL)
		slog.Info("Product cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ProductCacheTTL)
	}

	var publisher ProductEventPublisher = loggingPublisher{}
	if cfg.KafkaAddr != "" {
		publisher = NewKafkaProducer(cfg.KafkaAddr)
	}

	var searcher ProductSearcher
	if cfg.ElasticsearchAddr != "" {
		es, err := NewElasticsearch("http://" + cfg.ElasticsearchAddr)
		if err != nil {
			return nil, err
		}
		searcher = es
	}

	r := &Runtime{
		cfg:       cfg,
		db:        db,
		cache:     cache,
		publisher: publisher,
		listen:    net.Listen,
	}

	r.app = NewAppServer(cfg, AppDependencies{
		Products:   NewMongoProductRepository(db),
		Categories: NewMongoCategoryRepository(db),
		Cache:      cache,
		Publisher:  publisher,
		Searcher:   searcher,
		Readiness:  db,
	})

	if cfg.GrpcPort != "" {
		r.grpc = NewGrpcServer(":" + cfg.GrpcPort)
		db.OnStateChange(func(state DatabaseState) {
			r.grpc.SetServing(state == DatabaseReady)
		})
	}

	db.OnStateChange(func(state DatabaseState) {
		slog.Info("Service state changed", "state", r.State(), "database", state)
	})

	return r, nil
}

func (r *Runtime) State() ServiceState {
	if !r.listening.Load() {
		return ServiceConfigured
	}
	if r.db.State() == DatabaseDegraded {
		return ServiceDegraded
	}
	return ServiceListening
}

// Run binds the listeners and serves until ctx is cancelled or a server
// fails. The database connection never gates listening.
func (r *Runtime) Run(ctx context.Context) error {
	httpAddr := ":" + r.cfg.Port
	httpListener, err := r.listen("tcp", httpAddr)
	if err != nil {
		return &ListenBindError{Addr: httpAddr, Err: err}
	}

	var grpcListener net.Listener
	if r.grpc != nil {
		grpcListener, err = r.listen("tcp", r.grpc.ListenAddr)
		if err != nil {
			_ = httpListener.Close()
			return &ListenBindError{Addr: r.grpc.ListenAddr, Err: err}
		}
	}

	r.listening.Store(true)
	slog.Info("Product Service running on port "+r.cfg.Port, "port", r.cfg.Port)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.Run(gctx)
	})

	g.Go(func() error {
		err := r.app.Serve(httpListener)
		if gctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("server stopped unexpectedly")
		}
		return fmt.Errorf("serve http: %w", err)
	})

	if r.grpc != nil {
		g.Go(func() error {
			err := r.grpc.Serve(grpcListener)
			if gctx.Err() != nil {
				return nil
			}
			if err == nil {
				err = errors.New("server stopped unexpectedly")
			}
			return fmt.Errorf("serve grpc: %w", err)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down Product Service")
		if err := r.app.Shutdown(shutdownTimeout); err != nil {
			slog.Error("Error shutting down http server", "err", err)
		}
		_ = httpListener.Close()
		if r.grpc != nil {
			r.grpc.Stop()
		}
		return nil
	})

	err = g.Wait()
	r.listening.Store(false)
	r.close()
	return err
}

func (r *Runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.publisher.Close(); err != nil {
		slog.Error("Error closing event publisher", "err", err)
	}
	if err := r.cache.Close(); err != nil {
		slog.Error("Error closing product cache", "err", err)
	}
	if err := r.db.Close(ctx); err != nil {
		slog.Error("Error disconnecting from MongoDB", "err", err)
	}
}
