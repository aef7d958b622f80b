package coordinator

import (
	"context"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/events"
	"github.com/postdeck/postdeck/pkg/gateway"
	"github.com/postdeck/postdeck/pkg/models"
)

// Outcome is the terminal state of a mutation. Every submitted mutation
// resolves to exactly one of these; there is no retry loop inside the
// coordinator.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Resolution describes how a mutation settled.
type Resolution struct {
	Outcome     Outcome
	FailureKind gateway.Kind // Set when rolled back
	Err         error        // Underlying gateway error, informational
}

// Committed reports whether the speculative change was accepted as final.
func (r Resolution) Committed() bool {
	return r.Outcome == OutcomeCommitted
}

// Pending is the handle for an in-flight speculative mutation. It is created
// when the speculative change is applied and resolves exactly once when the
// remote call settles. Once resolved the coordinator keeps no record of the
// mutation.
type Pending struct {
	mutationID string
	kind       events.MutationKind
	done       chan struct{}
	resolution Resolution
}

func newPending(mutationID string, kind events.MutationKind) *Pending {
	return &Pending{
		mutationID: mutationID,
		kind:       kind,
		done:       make(chan struct{}),
	}
}

func (p *Pending) MutationID() string {
	return p.mutationID
}

func (p *Pending) Kind() events.MutationKind {
	return p.kind
}

// Done is closed when the mutation has settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the mutation settles or ctx is done. Waiting does not
// cancel the mutation; an abandoned mutation still resolves to commit or
// rollback.
func (p *Pending) Wait(ctx context.Context) (Resolution, error) {
	select {
	case <-p.done:
		return p.resolution, nil
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	}
}

// resolve must be called exactly once, after the index reflects the final
// state.
func (p *Pending) resolve(res Resolution) {
	p.resolution = res
	close(p.done)
}

// MoveRequest describes one item's transition between day buckets.
type MoveRequest struct {
	Item    models.ScheduledItem // Item as currently indexed
	From    calendar.Day
	To      calendar.Day
	Updated models.ScheduledItem // Item with the new ScheduledAt
}
