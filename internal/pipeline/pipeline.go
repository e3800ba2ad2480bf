// Package pipeline implements the redemption reconciliation state machine:
// format check → existence check → conflict check → supersession →
// allow-list apply → registry commit, with a compensating points refund on
// every rejection path.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/dyluth/warden/pkg/registry"
)

// Event is one reward redemption as delivered by the transport.
type Event struct {
	// RequesterID identifies the viewer who redeemed the reward.
	RequesterID string

	// CandidateName is the free-text name argument supplied by the viewer.
	CandidateName string

	// RedemptionID identifies the redemption for refund purposes.
	RedemptionID string
}

// ExistenceVerifier checks whether a candidate name exists with the
// external identity service. Implementations retry internally and return
// (false, nil) when the service stays unreachable (fail-closed).
type ExistenceVerifier interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// AllowList issues add/remove directives to the external server console.
// The boolean reports whether the directive was dispatched, not whether the
// server applied it; there is no acknowledgement channel.
type AllowList interface {
	Add(ctx context.Context, name string) bool
	Remove(ctx context.Context, name string) bool
}

// Refunder issues a compensating cancellation for a redemption.
// Best-effort: a false return is logged by the pipeline and handled
// manually by the operator.
type Refunder interface {
	Refund(ctx context.Context, redemptionID string) bool
}

// Pipeline orchestrates one redemption from event to terminal outcome.
//
// The format and existence checks run without locking and may overlap
// across redemptions. Everything from the conflict check through the commit
// runs under a single process-wide mutex so two in-flight redemptions can
// never both pass the conflict check for the same name, or interleave
// add/remove directives for the same requester. Event rates here are
// human-paced; full serialization of the mutation section is cheap.
type Pipeline struct {
	reg      *registry.Registry
	verifier ExistenceVerifier
	allow    AllowList
	refunder Refunder

	// mu serializes the conflict-check-through-commit section.
	mu sync.Mutex
}

// New creates a Pipeline. The registry is owned by the pipeline for the
// lifetime of the process; no other component may mutate it.
func New(reg *registry.Registry, verifier ExistenceVerifier, allow AllowList, refunder Refunder) *Pipeline {
	return &Pipeline{
		reg:      reg,
		verifier: verifier,
		allow:    allow,
		refunder: refunder,
	}
}

// Handle runs one redemption to a terminal outcome. It blocks for the full
// reconciliation including any retry schedules; the transport calls it on
// its own goroutine per event.
//
// The returned error is non-nil only when the registry commit could not be
// written through to durable storage. The in-memory mapping and the
// external allow-list are then ahead of the snapshot on disk, and a restart
// would silently revert the mapping - callers must surface this loudly.
func (p *Pipeline) Handle(ctx context.Context, ev Event) (Outcome, error) {
	name := strings.TrimSpace(ev.CandidateName)

	log.Printf("[INFO] Redemption received: redemption_id=%s requester=%s candidate=%q",
		ev.RedemptionID, ev.RequesterID, name)

	// Step 1: format check.
	if !IsValidFormat(name) {
		log.Printf("[WARN] Rejected malformed name %q: redemption_id=%s", name, ev.RedemptionID)
		p.refund(ctx, ev)
		return RejectedFormat, nil
	}

	// Step 2: existence check. The verifier is fail-closed: unreachable
	// identity service reads as "does not exist".
	exists, err := p.verifier.Exists(ctx, name)
	if err != nil {
		log.Printf("[WARN] Existence check aborted for %q: redemption_id=%s error=%v",
			name, ev.RedemptionID, err)
	}
	if !exists {
		log.Printf("[WARN] Rejected unknown account %q: redemption_id=%s", name, ev.RedemptionID)
		p.refund(ctx, ev)
		return RejectedNotFound, nil
	}

	outcome, commitErr := p.apply(ctx, ev, name)
	if outcome.Rejected() {
		p.refund(ctx, ev)
	}
	return outcome, commitErr
}

// apply runs the mutation section (conflict check through commit) under the
// global lock. Refunds happen in Handle after the lock is released.
func (p *Pipeline) apply(ctx context.Context, ev Event, name string) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Step 3: conflict check. A name owned by a different requester is a
	// hard rejection; re-redemption of a requester's own current name is a
	// no-op re-affirmation and falls through.
	if owner, ok := p.reg.FindOwner(name); ok && owner != ev.RequesterID {
		log.Printf("[WARN] Name %q already registered by %s: redemption_id=%s",
			name, owner, ev.RedemptionID)
		return RejectedConflict, nil
	}

	// Step 4: supersession. Clear the requester's previous name from the
	// allow-list and the registry before installing the new one. A failed
	// remove is logged and the run proceeds: the console offers no
	// transactional semantics, and blocking every rename on it would trade
	// too much availability for a membership entry that the next
	// reconciliation can clean up.
	if old, ok := p.reg.Lookup(ev.RequesterID); ok && old != name {
		if !p.allow.Remove(ctx, old) {
			log.Printf("[WARN] Failed to remove superseded name %s from allow-list: requester=%s",
				old, ev.RequesterID)
		} else {
			log.Printf("[INFO] Removed superseded name %s: requester=%s", old, ev.RequesterID)
		}
		p.reg.Delete(ev.RequesterID)
		if err := p.reg.Persist(ctx); err != nil {
			log.Printf("[ERROR] Failed to persist registry after supersession: %v", err)
		}
	}

	// Step 5: apply. The add directive is idempotent on the server side,
	// so duplicate delivery of a committed redemption converges here.
	if !p.allow.Add(ctx, name) {
		log.Printf("[ERROR] Allow-list add for %s was not accepted: redemption_id=%s",
			name, ev.RedemptionID)
		return RejectedApplyFailed, nil
	}

	// Step 6: commit.
	p.reg.Put(ev.RequesterID, name)
	if err := p.reg.Persist(ctx); err != nil {
		log.Printf("[ERROR] Registry commit not durable: requester=%s name=%s error=%v "+
			"(in-memory mapping and allow-list are ahead of the on-disk snapshot; "+
			"a restart will revert this registration)", ev.RequesterID, name, err)
		return Committed, fmt.Errorf("registry commit for %s not durable: %w", ev.RequesterID, err)
	}

	log.Printf("[INFO] Registered %s for %s: redemption_id=%s", name, ev.RequesterID, ev.RedemptionID)
	return Committed, nil
}

// refund attempts the compensating cancellation and logs the result. A
// failed refund leaves the viewer without their points and without a
// whitelist entry; that double failure is logged for manual remediation and
// nothing else is retried.
func (p *Pipeline) refund(ctx context.Context, ev Event) {
	if p.refunder.Refund(ctx, ev.RedemptionID) {
		log.Printf("[INFO] Refunded redemption %s for %s", ev.RedemptionID, ev.RequesterID)
		return
	}
	log.Printf("[ERROR] Failed to refund redemption %s for %s: manual remediation required",
		ev.RedemptionID, ev.RequesterID)
}
