package testutil

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/cache"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/idempotency"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/validator"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	config    *config.Configuration
	logger    *logger.Logger
	logs      *observer.ObservedLogs
	cache     *cache.InMemoryCache
	store     idempotency.Store
	gate      idempotency.Gate
	scheduler *InMemoryScheduler
	metering  *InMemoryMeteringClient
	publisher *InMemoryPublisherService
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()
	s.config = config.GetDefaultConfig()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Now().UTC()

	core, logs := observer.New(zap.DebugLevel)
	s.logger = logger.NewWithCore(core)
	s.logs = logs

	s.cache = cache.NewInMemoryCache()
	s.store = idempotency.NewMemoryStore(s.cache)
	s.gate = idempotency.NewGate(s.store, s.config, s.logger)
	s.scheduler = NewInMemoryScheduler()
	s.metering = NewInMemoryMeteringClient()
	s.publisher = NewInMemoryEventPublisher()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.cache.Flush(s.ctx)
	s.publisher.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetLogs returns every entry logged through the test logger
func (s *BaseServiceTestSuite) GetLogs() *observer.ObservedLogs {
	return s.logs
}

// CountLogs returns the number of entries with the given level and message
func (s *BaseServiceTestSuite) CountLogs(level zapcore.Level, message string) int {
	return s.logs.FilterLevelExact(level).FilterMessage(message).Len()
}

// GetGate returns the idempotency gate backed by the in-memory store
func (s *BaseServiceTestSuite) GetGate() idempotency.Gate {
	return s.gate
}

// GetIdempotencyStore returns the store behind the gate
func (s *BaseServiceTestSuite) GetIdempotencyStore() idempotency.Store {
	return s.store
}

// GetScheduler returns the test trigger scheduler
func (s *BaseServiceTestSuite) GetScheduler() *InMemoryScheduler {
	return s.scheduler
}

// GetMetering returns the test metering client
func (s *BaseServiceTestSuite) GetMetering() *InMemoryMeteringClient {
	return s.metering
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisherService {
	return s.publisher
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
