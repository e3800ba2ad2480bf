// Package identity resolves candidate names against the Mojang account
// database, the authority for whether a target name exists.
package identity

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/dyluth/warden/internal/retry"
)

// DefaultBaseURL is the Mojang profile lookup endpoint.
const DefaultBaseURL = "https://api.mojang.com"

// Verifier checks name existence with bounded retry. The check is
// fail-closed: if the service stays unreachable or keeps answering
// ambiguously for the whole retry schedule, the name is treated as
// nonexistent rather than blocking the redemption indefinitely.
type Verifier struct {
	client  *http.Client
	baseURL string
	policy  retry.Policy
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithBaseURL overrides the lookup endpoint (tests point this at a local
// httptest server).
func WithBaseURL(u string) Option {
	return func(v *Verifier) { v.baseURL = u }
}

// WithPolicy overrides the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(v *Verifier) { v.policy = p }
}

// NewVerifier creates a Verifier using the shared HTTP client.
func NewVerifier(client *http.Client, opts ...Option) *Verifier {
	v := &Verifier{
		client:  client,
		baseURL: DefaultBaseURL,
		policy:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Exists reports whether name is a registered account.
//
// A 200 response is a definitive yes; 404 and the service's legacy 204 are
// a definitive no. Anything else (transport error, 5xx, rate limiting) is
// retried on the fixed schedule; exhausting it returns (false, nil). The
// returned error is non-nil only when the parent context was cancelled.
func (v *Verifier) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool

	lookupURL := fmt.Sprintf("%s/users/profiles/minecraft/%s", v.baseURL, url.PathEscape(name))

	err := v.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to build lookup request: %w", err))
		}

		resp, err := v.client.Do(req)
		if err != nil {
			return fmt.Errorf("profile lookup failed: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			exists = true
			return nil
		case http.StatusNotFound, http.StatusNoContent:
			exists = false
			return nil
		default:
			return fmt.Errorf("unexpected status %d from profile lookup", resp.StatusCode)
		}
	})

	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Printf("[WARN] Identity service unreachable, treating %q as nonexistent: %v", name, err)
		return false, nil
	}
	return exists, nil
}
