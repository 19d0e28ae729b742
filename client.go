package wingadmin

import (
	"context"
	"strings"
)

// TokenSource supplies the bearer credential on demand. Returning an empty
// token (or an error) means no credential is present.
type TokenSource func(ctx context.Context) (string, error)

// NoToken is a TokenSource for unauthenticated, read-only use.
func NoToken(context.Context) (string, error) { return "", nil }

// StaticToken returns a TokenSource yielding a fixed token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Client is the main interface for administering the wing catalog.
// It wires the configuration, credential source, and document store, and
// enforces the authentication precondition on every mutating operation so
// no unauthenticated call ever reaches the network.
type Client struct {
	config Config
	tokens TokenSource
	repo   *Repository
	debug  *DebugLogger
}

// New creates a new wingadmin client persisting through the given store.
// The store is typically a github.Gateway; tests inject fakes.
func New(cfg Config, tokens TokenSource, store DocumentStore) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = NoToken
	}

	debug, err := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		config: cfg,
		tokens: tokens,
		repo:   NewRepository(store, cfg.CatalogPath),
		debug:  debug,
	}, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.debug.Close()
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.config }

// Debug returns the client's debug logger.
func (c *Client) Debug() *DebugLogger { return c.debug }

// Refresh reloads the catalog snapshot through the public read path.
func (c *Client) Refresh(ctx context.Context) (*Catalog, error) {
	return c.repo.LoadPublished(ctx)
}

// Catalog returns a copy of the current snapshot, loading it first if
// needed.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.repo.Snapshot(), nil
}

// Stats summarizes the current snapshot, loading it first if needed.
func (c *Client) Stats(ctx context.Context) (CatalogStats, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return CatalogStats{}, err
	}
	return c.repo.Stats(), nil
}

// SaveWing creates or edits a wing and persists the catalog.
func (c *Client) SaveWing(ctx context.Context, params WingParams) (*Wing, error) {
	if err := c.requireAuth(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.repo.UpsertWing(ctx, params)
}

// DeleteWing removes a wing and its image blob.
func (c *Client) DeleteWing(ctx context.Context, id string) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	return c.repo.RemoveWing(ctx, id)
}

// SaveManufacturer creates or edits a manufacturer and persists the catalog.
func (c *Client) SaveManufacturer(ctx context.Context, params ManufacturerParams) (*Manufacturer, error) {
	if err := c.requireAuth(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.repo.UpsertManufacturer(ctx, params)
}

// DeleteManufacturer removes a manufacturer; rejected while any wing still
// references it.
func (c *Client) DeleteManufacturer(ctx context.Context, id string) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	return c.repo.RemoveManufacturer(ctx, id)
}

func (c *Client) ensureLoaded(ctx context.Context) error {
	if c.repo.Loaded() {
		return nil
	}
	_, err := c.repo.LoadPublished(ctx)
	return err
}

// requireAuth verifies a credential is present before a mutating operation.
// Absence is a precondition failure; the call is never attempted.
func (c *Client) requireAuth(ctx context.Context) error {
	token, err := c.tokens(ctx)
	if err != nil || strings.TrimSpace(token) == "" {
		return ErrUnauthenticated
	}
	return nil
}
