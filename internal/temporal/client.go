package temporal

import (
	"context"
	"crypto/tls"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"go.temporal.io/sdk/client"
	"go.uber.org/fx"
)

// APIKeyProvider provides headers for API key authentication
type APIKeyProvider struct {
	APIKey    string
	Namespace string
}

// GetHeaders implements client.HeadersProvider
func (a *APIKeyProvider) GetHeaders(_ context.Context) (map[string]string, error) {
	return map[string]string{
		"Authorization":      "Bearer " + a.APIKey,
		"temporal-namespace": a.Namespace,
	}, nil
}

// TemporalClient wraps the Temporal SDK client for application use.
type TemporalClient struct {
	Client client.Client
}

// NewTemporalClient creates a new Temporal client using the given configuration.
// The connection is established lazily so run modes that never schedule do not
// depend on a reachable server at startup.
func NewTemporalClient(cfg *config.Configuration, log *logger.Logger) (*TemporalClient, error) {
	clientOptions := client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    log.GetTemporalLogger(),
	}

	if cfg.Temporal.APIKey != "" {
		log.Info("Creating Temporal client with API key provider")
		clientOptions.HeadersProvider = &APIKeyProvider{
			APIKey:    cfg.Temporal.APIKey,
			Namespace: cfg.Temporal.Namespace,
		}
	}

	if cfg.Temporal.TLS {
		clientOptions.ConnectionOptions.TLS = &tls.Config{}
	}

	c, err := client.NewLazyClient(clientOptions)
	if err != nil {
		log.Errorw("failed to create temporal client", "error", err, "address", cfg.Temporal.Address)
		return nil, err
	}

	log.Infow("temporal client created", "address", cfg.Temporal.Address, "namespace", cfg.Temporal.Namespace)
	return &TemporalClient{Client: c}, nil
}

// RegisterWithLifecycle closes the client on shutdown
func (c *TemporalClient) RegisterWithLifecycle(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Client.Close()
			return nil
		},
	})
}
