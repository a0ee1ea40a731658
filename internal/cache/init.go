package cache

import (
	"github.com/flexprice/lifecycle/internal/logger"
)

// Initialize creates the process wide in-memory cache
func Initialize(log *logger.Logger) *InMemoryCache {
	log.Info("Initializing cache system")
	c := NewInMemoryCache()
	log.Info("Cache system initialized")
	return c
}
