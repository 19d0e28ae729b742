package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/paraflightlog/wingadmin"
)

// Gateway layers the optimistic-concurrency write protocol over a
// ContentClient. Every write attempt re-reads the authoritative version tag
// immediately before the tagged put; a tag captured earlier is never
// trusted. Conflicts and transport failures are retried with exponential
// backoff inside a bounded budget, then surfaced as a SaveError.
//
// Gateway implements wingadmin.DocumentStore and wingadmin.PublicReader.
type Gateway struct {
	client      ContentClient
	maxRetries  int
	baseDelay   time.Duration
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logf        func(format string, args ...any)
}

// GatewayOptions configures a Gateway.
type GatewayOptions struct {
	// MaxRetries is the number of write retries beyond the first attempt.
	// Defaults to 3.
	MaxRetries int

	// BaseDelay is the backoff unit: attempt n waits BaseDelay * 2^n before
	// retrying. Defaults to 1 second.
	BaseDelay time.Duration

	// SettleDelay is the pause after a successful write that lets the raw
	// read path's cache converge before the caller re-reads. Defaults to
	// 500 milliseconds.
	SettleDelay time.Duration

	// Sleep overrides the delay primitive. Tests inject a recorder so the
	// retry budget and backoff are observable without wall-clock delay.
	Sleep func(ctx context.Context, d time.Duration) error

	// Logf receives debug traces of the write protocol.
	Logf func(format string, args ...any)
}

// NewGateway creates a gateway over the given content client.
func NewGateway(client ContentClient, opts GatewayOptions) *Gateway {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	settleDelay := opts.SettleDelay
	if settleDelay <= 0 {
		settleDelay = 500 * time.Millisecond
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Gateway{
		client:      client,
		maxRetries:  maxRetries,
		baseDelay:   baseDelay,
		settleDelay: settleDelay,
		sleep:       sleep,
		logf:        logf,
	}
}

// ReadDocument fetches the latest bytes and version tag for a path.
func (g *Gateway) ReadDocument(ctx context.Context, path string) ([]byte, string, error) {
	info, err := g.client.GetContent(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return info.Content, info.SHA, nil
}

// WriteDocument persists content at path using the retry/backoff protocol:
// read the current tag fresh, attempt the tagged write, and on a conflict
// or transport failure wait baseDelay * 2^attempt and try again, up to
// maxRetries beyond the first attempt. After a successful write it pauses
// settleDelay so immediate re-reads through the cached path converge.
//
// The commit description is stamped with a ULID change ID so writes from
// concurrent admin sessions stay distinguishable in repository history.
func (g *Gateway) WriteDocument(ctx context.Context, path string, content []byte, message string) (string, error) {
	message = fmt.Sprintf("%s [%s]", message, ulid.Make().String())

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := g.baseDelay << (attempt - 1)
			g.logf("write %s: attempt %d/%d failed (%v), retrying in %s",
				path, attempt, g.maxRetries+1, lastErr, delay)
			if err := g.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
		attempts++

		// Never reuse a tag from a previous attempt or operation.
		sha := ""
		info, err := g.client.GetContent(ctx, path)
		switch {
		case err == nil:
			sha = info.SHA
		case errors.Is(err, wingadmin.ErrNotFound):
			// Absent document: write without a tag to create it.
		default:
			lastErr = err
			continue
		}

		newSHA, err := g.client.PutContent(ctx, path, content, sha, message)
		if err != nil {
			lastErr = err
			continue
		}

		g.logf("write %s: committed tag %s", path, shortTag(newSHA))
		if err := g.sleep(ctx, g.settleDelay); err != nil {
			return "", err
		}
		return newSHA, nil
	}

	return "", &wingadmin.SaveError{Attempts: attempts, Err: lastErr}
}

// DeleteDocument removes the document at path, re-reading the current tag
// immediately before the delete. A document already absent is not an error.
func (g *Gateway) DeleteDocument(ctx context.Context, path, message string) error {
	info, err := g.client.GetContent(ctx, path)
	if errors.Is(err, wingadmin.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	message = fmt.Sprintf("%s [%s]", message, ulid.Make().String())
	err = g.client.DeleteContent(ctx, path, info.SHA, message)
	if errors.Is(err, wingadmin.ErrNotFound) {
		return nil
	}
	return err
}

// FetchPublished reads the published copy of a path through the
// unauthenticated raw distribution. Callers tolerate a short staleness
// window; the write path never trusts this copy's tag.
func (g *Gateway) FetchPublished(ctx context.Context, path string) ([]byte, error) {
	return g.client.FetchRaw(ctx, path)
}

func shortTag(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
