// Package moderate decides what to do with an inbound message: it records
// the sender's message count, applies the probation gate, and runs the
// keyword matcher when the gate is open. Enforcement itself (deleting the
// message, writing the log entry) is performed by the caller from the
// returned decision.
package moderate

import (
	"context"
	"fmt"

	"github.com/sweeper/mod-bot/internal/keyword"
	"github.com/sweeper/mod-bot/internal/probation"
	"github.com/sweeper/mod-bot/internal/telegram"
)

// ProbationWindow is how many messages from a new user are filtered before
// the user is trusted. Users in the always-moderate set never graduate.
const ProbationWindow = 5

// Counter is the per-user message counter consulted on every message.
// Implementations must provide atomic increment-then-return semantics per
// user (see probation.Store).
type Counter interface {
	RecordAndGet(ctx context.Context, userID int64) (int64, error)
}

// Decision is the outcome for a single message.
type Decision struct {
	Enforce   bool           // delete the message and log the action
	Checked   bool           // the gate was open and the filter applied
	Match     keyword.Result // which keyword matched, if any
	SeenCount int64          // the sender's message count after this message
}

// Engine composes the probation counter, the keyword matcher, and the
// always-moderate set into a single per-message decision.
type Engine struct {
	counter Counter
	matcher *keyword.Matcher
	always  probation.AlwaysModerateSet
}

// NewEngine creates a decision engine. The matcher and always-moderate set
// are fixed for the engine's lifetime.
func NewEngine(counter Counter, matcher *keyword.Matcher, always probation.AlwaysModerateSet) *Engine {
	return &Engine{counter: counter, matcher: matcher, always: always}
}

// Decide evaluates one message.
//
// A message without a sender ID has nothing to attribute the count to: the
// zero decision is returned without touching the counter. Otherwise the
// counter increments exactly once per message, before the text is examined,
// so a caption-less photo still consumes a probation slot.
//
// The matcher only runs while the gate is open: sender in the
// always-moderate set, or within the first ProbationWindow messages.
// Counter failures are returned to the caller; the caller owns the
// fail-open/fail-closed policy.
func (e *Engine) Decide(ctx context.Context, msg *telegram.Message) (Decision, error) {
	if msg == nil || msg.From == nil || msg.From.ID == 0 {
		return Decision{}, nil
	}

	count, err := e.counter.RecordAndGet(ctx, msg.From.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("moderate: record user %d: %w", msg.From.ID, err)
	}

	d := Decision{SeenCount: count}
	if !e.always.Contains(msg.From.ID) && count > ProbationWindow {
		return d, nil // trusted: past the window, pass through unfiltered
	}
	d.Checked = true

	text := msg.ContentText()
	if text == "" {
		return d, nil
	}

	d.Match = e.matcher.Match(text)
	d.Enforce = d.Match.Matched
	return d, nil
}
