package moderate

import (
	"context"
	"errors"
	"testing"

	"github.com/sweeper/mod-bot/internal/keyword"
	"github.com/sweeper/mod-bot/internal/probation"
	"github.com/sweeper/mod-bot/internal/telegram"
)

// fakeCounter is an in-memory Counter with optional error injection.
type fakeCounter struct {
	counts map[int64]int64
	calls  int
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[int64]int64)}
}

func (f *fakeCounter) RecordAndGet(_ context.Context, userID int64) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.counts[userID]++
	return f.counts[userID], nil
}

func newTestEngine(counter Counter, alwaysIDs ...int64) *Engine {
	matcher := keyword.NewMatcher([]string{"scam", "crypto"})
	return NewEngine(counter, matcher, probation.NewAlwaysModerateSet(alwaysIDs))
}

func msgFrom(userID int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: userID},
		Chat:      telegram.Chat{ID: -100},
		Text:      text,
	}
}

func TestDecide_EnforcesDuringProbation(t *testing.T) {
	counter := newFakeCounter()
	engine := newTestEngine(counter)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		d, err := engine.Decide(ctx, msgFrom(10, "total scam here"))
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if d.SeenCount != want {
			t.Errorf("SeenCount = %d, want %d", d.SeenCount, want)
		}
		if !d.Enforce {
			t.Errorf("message %d: Enforce = false, want true during probation", want)
		}
		if !d.Checked {
			t.Errorf("message %d: Checked = false, want true during probation", want)
		}
		if d.Match.Keyword != "scam" {
			t.Errorf("message %d: Keyword = %q, want %q", want, d.Match.Keyword, "scam")
		}
	}
}

func TestDecide_TrustedAfterWindow(t *testing.T) {
	counter := newFakeCounter()
	counter.counts[10] = 5 // five messages already seen
	engine := newTestEngine(counter)

	d, err := engine.Decide(context.Background(), msgFrom(10, "total scam here"))
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.SeenCount != 6 {
		t.Errorf("SeenCount = %d, want 6", d.SeenCount)
	}
	if d.Enforce {
		t.Error("Enforce = true for trusted user, matcher must not run past the window")
	}
	if d.Checked {
		t.Error("Checked = true for trusted user, want false")
	}
	if d.Match.Matched {
		t.Error("Match.Matched = true, matcher should have been skipped")
	}
}

func TestDecide_AlwaysModerateNeverGraduates(t *testing.T) {
	counter := newFakeCounter()
	counter.counts[99] = 100
	engine := newTestEngine(counter, 99)

	d, err := engine.Decide(context.Background(), msgFrom(99, "crypto giveaway"))
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.SeenCount != 101 {
		t.Errorf("SeenCount = %d, want 101", d.SeenCount)
	}
	if !d.Enforce {
		t.Error("Enforce = false for always-moderated user, want true")
	}
}

func TestDecide_CleanTextPassesThrough(t *testing.T) {
	engine := newTestEngine(newFakeCounter())

	d, err := engine.Decide(context.Background(), msgFrom(10, "hello everyone"))
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.Enforce || d.Match.Matched {
		t.Errorf("Decision = %+v, want clean pass-through", d)
	}
	if d.SeenCount != 1 {
		t.Errorf("SeenCount = %d, want 1", d.SeenCount)
	}
}

func TestDecide_MissingSender(t *testing.T) {
	counter := newFakeCounter()
	engine := newTestEngine(counter)
	ctx := context.Background()

	for _, msg := range []*telegram.Message{
		nil,
		{MessageID: 1, Text: "scam"},                         // no From
		{MessageID: 1, From: &telegram.User{}, Text: "scam"}, // zero ID
	} {
		d, err := engine.Decide(ctx, msg)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if d.Enforce || d.SeenCount != 0 {
			t.Errorf("Decision = %+v, want zero decision without sender", d)
		}
	}
	if counter.calls != 0 {
		t.Errorf("counter called %d times, want 0 without a sender ID", counter.calls)
	}
}

func TestDecide_NoTextStillCountsMessage(t *testing.T) {
	counter := newFakeCounter()
	engine := newTestEngine(counter)

	d, err := engine.Decide(context.Background(), msgFrom(10, ""))
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if d.Enforce || d.Match.Matched {
		t.Errorf("Decision = %+v, want no match for empty text", d)
	}
	if d.SeenCount != 1 {
		t.Errorf("SeenCount = %d, want 1 (increment happens before the text check)", d.SeenCount)
	}
	if counter.calls != 1 {
		t.Errorf("counter called %d times, want 1", counter.calls)
	}
}

func TestDecide_CaptionFallback(t *testing.T) {
	engine := newTestEngine(newFakeCounter())

	msg := &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: 10},
		Chat:      telegram.Chat{ID: -100},
		Caption:   "free crypto inside",
	}
	d, err := engine.Decide(context.Background(), msg)
	if err != nil {
		t.Fatalf("Decide() error: %v", err)
	}
	if !d.Enforce || d.Match.Keyword != "crypto" {
		t.Errorf("Decision = %+v, want enforcement via caption", d)
	}
}

func TestDecide_CounterFailurePropagates(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("redis down")
	engine := newTestEngine(counter)

	d, err := engine.Decide(context.Background(), msgFrom(10, "scam"))
	if err == nil {
		t.Fatal("expected error when the counter store is unavailable")
	}
	if !errors.Is(err, counter.err) {
		t.Errorf("error %v does not wrap the store error", err)
	}
	if d.Enforce {
		t.Error("Enforce = true on counter failure, decision must stay zero")
	}
}
