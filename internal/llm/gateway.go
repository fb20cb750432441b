package llm

import (
	"context"
	"sync"
)

// Gateway owns the active chat-client configuration for a process. It is
// constructed once at startup and passed by handle into the workflow and the
// server, so executions share one configuration without reaching for a
// package-level global. Re-configuring replaces the client for all
// subsequent callers; in-flight executions that already fetched a client
// keep the one they have.
type Gateway struct {
	mu         sync.Mutex
	cfg        Config
	client     Client
	configured bool
}

// NewGateway returns an unconfigured gateway. The first Client call
// configures it from the environment unless Configure ran first.
func NewGateway() *Gateway {
	return &Gateway{}
}

// NewGatewayWithClient returns a gateway bound to an existing client.
// Used to inject fakes in tests and pre-built clients at startup.
func NewGatewayWithClient(client Client) *Gateway {
	return &Gateway{client: client, configured: true}
}

// Configure validates cfg and makes it the active configuration, closing
// any previously built client.
func (g *Gateway) Configure(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	g.mu.Lock()
	old := g.client
	g.cfg = cfg
	g.client = client
	g.configured = true
	g.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Client returns the active chat client, lazily configuring from the
// environment on first use. A missing credential surfaces as a ConfigError
// and is not retried here.
func (g *Gateway) Client(ctx context.Context) (Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	cfg := ConfigFromEnv()
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	g.cfg = cfg
	g.client = client
	g.configured = true
	return g.client, nil
}

// Config returns the active configuration (zero value if unconfigured).
func (g *Gateway) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// Configured reports whether a client has been built.
func (g *Gateway) Configured() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.configured
}

// Close releases the active client, if any.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	g.configured = false
	return err
}
