// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	repository "github.com/okian/primeapi/internal/adapters/repository"
	"github.com/okian/primeapi/internal/adapters/repository/sqlite"
	"github.com/okian/primeapi/internal/config"
	"github.com/okian/primeapi/internal/domain/bounds"
	"github.com/okian/primeapi/internal/domain/classify"
	"github.com/okian/primeapi/internal/domain/model"
	"github.com/okian/primeapi/internal/domain/query"
	"github.com/okian/primeapi/internal/domain/retrieval"
	"github.com/okian/primeapi/internal/domain/sieve"
	"github.com/okian/primeapi/internal/domain/types"
	"github.com/okian/primeapi/pkg/logger"
	"github.com/okian/primeapi/pkg/metrics"
)

const lastUpdatedLayout = "2006-01-02"

// Service implements the API dependencies for the prime number lookup engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	resolver   *bounds.Resolver
	validator  *query.Validator
	retriever  *retrieval.Retriever
	classifier *classify.Classifier

	// Configuration
	driver     string
	sqlitePath string
	seedLimit  int64
	maxLen     int
	about      string
	injected   repository.Store

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreDriver selects the store opened by Start: memory or sqlite.
func WithStoreDriver(driver string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
	}
}

// WithSQLitePath sets the database file for the sqlite driver.
func WithSQLitePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithSeedLimit sets the largest integer sieved into the memory driver.
func WithSeedLimit(limit int64) Option {
	return func(s *Service) {
		if limit >= 2 {
			s.seedLimit = limit
		}
	}
}

// WithMaxLen caps the number of records one range query may return.
func WithMaxLen(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// WithAbout sets the text returned by About.
func WithAbout(about string) Option {
	return func(s *Service) {
		if about != "" {
			s.about = about
		}
	}
}

// WithStore makes Start use store instead of opening one. The service takes
// ownership and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.injected = store
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:     config.DriverMemory,
		sqlitePath: "primes.db",
		seedLimit:  1_000_000,
		maxLen:     1000,
		about:      config.DefaultAbout,
		logger:     nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and wires the query components over it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prime number service...", logger.String("driver", s.driver))

	raw, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	s.store = repository.NewInstrumented(raw)
	s.resolver = bounds.NewResolver(s.store)
	s.validator = query.NewValidator(s.resolver, query.WithMaxLimit(s.maxLen))
	s.retriever = retrieval.NewRetriever(s.store)
	s.classifier = classify.NewClassifier(s.resolver, s.store)

	count, err := s.store.Count(ctx)
	if err != nil {
		_ = s.store.Close()
		return fmt.Errorf("count records: %w", err)
	}
	if count > 0 {
		if b, err := s.resolver.Resolve(ctx, model.KeyValue); err == nil {
			metrics.UpdateDataset(b.Max, b.MaxRank, count)
		}
	} else {
		s.logger.Warn(ctx, "store is empty; queries will fail until records are ingested")
	}

	s.started = true
	s.logger.Info(ctx, "prime number service started",
		logger.String("driver", s.driver),
		logger.Int("records", count),
		logger.Int("maxLen", s.maxLen),
	)

	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.injected != nil {
		return s.injected, nil
	}
	switch s.driver {
	case config.DriverMemory:
		store := repository.NewTreapStore()
		if err := sieve.New().Generate(ctx, model.Record{}, s.seedLimit, func(batch []model.Record) error {
			return store.Append(ctx, batch)
		}); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, s.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %q: %w", s.sqlitePath, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.driver)
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping prime number service...")

	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "failed to close store", logger.Error(err))
	}
	s.injected = nil

	s.started = false
	s.logger.Info(context.Background(), "prime number service stopped")
}

type components struct {
	store      repository.Store
	resolver   *bounds.Resolver
	validator  *query.Validator
	retriever  *retrieval.Retriever
	classifier *classify.Classifier
}

func (s *Service) components() (components, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return components{}, ErrNotStarted
	}
	return components{
		store:      s.store,
		resolver:   s.resolver,
		validator:  s.validator,
		retriever:  s.retriever,
		classifier: s.classifier,
	}, nil
}

// About summarizes the dataset as of this call.
func (s *Service) About(ctx context.Context) (types.About, error) {
	c, err := s.components()
	if err != nil {
		return types.About{}, err
	}
	b, err := c.resolver.Resolve(ctx, model.KeyValue)
	if err != nil {
		return types.About{}, err
	}
	return types.About{
		About:       s.about,
		LastUpdated: b.LastUpdated.UTC().Format(lastUpdatedLayout),
		MaxValue:    b.Max,
		MaxRank:     b.MaxRank,
	}, nil
}

// Numbers validates p against the current bounds and runs the range query.
func (s *Service) Numbers(ctx context.Context, p query.Params) ([]types.Number, error) {
	c, err := s.components()
	if err != nil {
		return nil, err
	}
	q, err := c.validator.Validate(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "running range query",
		logger.Int("order", q.Order),
		logger.String("type", string(q.Key)),
		logger.Int64("min", q.Min),
		logger.Int64("max", q.Max),
		logger.Int("len", q.Limit),
	)
	recs, err := c.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}
	return types.FromRecords(recs), nil
}

// CheckIfPrime classifies every raw token of the batch.
func (s *Service) CheckIfPrime(ctx context.Context, raw []string) ([]types.Lookup, error) {
	c, err := s.components()
	if err != nil {
		return nil, err
	}
	lookups, err := c.classifier.Classify(ctx, raw)
	if err != nil {
		return nil, err
	}
	out := make([]types.Lookup, len(lookups))
	for i, l := range lookups {
		out[i] = types.Lookup{Queried: l.Queried}
		if l.Record != nil {
			n := types.FromRecord(*l.Record)
			out[i].Record = &n
		}
	}
	return out, nil
}

// Health reports whether the store answers.
func (s *Service) Health(ctx context.Context) error {
	c, err := s.components()
	if err != nil {
		return err
	}
	return c.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
		"driver":  s.driver,
		"maxLen":  s.maxLen,
	}

	if s.started {
		count, err := s.store.Count(ctx)
		if err != nil {
			stats["error"] = err.Error()
			return stats
		}
		stats["records"] = count
		if count > 0 {
			if b, err := s.resolver.Resolve(ctx, model.KeyValue); err == nil {
				stats["maxValue"] = b.Max
				stats["maxRank"] = b.MaxRank
				metrics.UpdateDataset(b.Max, b.MaxRank, count)
			}
		}
	}

	return stats
}
