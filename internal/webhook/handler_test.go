package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sweeper/mod-bot/internal/keyword"
	"github.com/sweeper/mod-bot/internal/messaging"
	"github.com/sweeper/mod-bot/internal/moderate"
	"github.com/sweeper/mod-bot/internal/probation"
)

const testSecret = "s3cret"

// fakePublisher records published enforcement commands.
type fakePublisher struct {
	deletes [][]byte
	logs    [][]byte
}

func (f *fakePublisher) PublishEnforceDelete(data []byte) error {
	f.deletes = append(f.deletes, data)
	return nil
}

func (f *fakePublisher) PublishEnforceLog(data []byte) error {
	f.logs = append(f.logs, data)
	return nil
}

// fakeCounter is an in-memory counter with optional error injection.
type fakeCounter struct {
	counts map[int64]int64
	err    error
}

func (f *fakeCounter) RecordAndGet(_ context.Context, userID int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[int64]int64)
	}
	f.counts[userID]++
	return f.counts[userID], nil
}

func newTestHandler(counter moderate.Counter) (*Handler, *fakePublisher) {
	matcher := keyword.NewMatcher([]string{"scam"})
	engine := moderate.NewEngine(counter, matcher, probation.NewAlwaysModerateSet(nil))
	pub := &fakePublisher{}
	return NewHandler(testSecret, engine, pub), pub
}

func postUpdate(h *Handler, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func updateBody(userID int64, text string) string {
	return `{
		"update_id": 1,
		"message": {
			"message_id": 42,
			"from": {"id": ` + jsonInt(userID) + `, "username": "newbie"},
			"chat": {"id": -100555, "type": "supergroup", "title": "Group"},
			"text": ` + jsonString(text) + `
		}
	}`
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestHandler_NonPost(t *testing.T) {
	h, pub := newTestHandler(&fakeCounter{})

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if len(pub.deletes) != 0 {
		t.Error("GET must not publish anything")
	}
}

func TestHandler_SecretCheck(t *testing.T) {
	h, _ := newTestHandler(&fakeCounter{})

	if rec := postUpdate(h, "wrong", updateBody(7, "hi")); rec.Code != http.StatusForbidden {
		t.Errorf("wrong secret: status = %d, want 403", rec.Code)
	}
	if rec := postUpdate(h, "", updateBody(7, "hi")); rec.Code != http.StatusForbidden {
		t.Errorf("missing secret: status = %d, want 403", rec.Code)
	}
	if rec := postUpdate(h, testSecret, updateBody(7, "hi")); rec.Code != http.StatusOK {
		t.Errorf("correct secret: status = %d, want 200", rec.Code)
	}
}

func TestHandler_BadJSON(t *testing.T) {
	h, _ := newTestHandler(&fakeCounter{})

	if rec := postUpdate(h, testSecret, "{not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_NoMessage(t *testing.T) {
	h, pub := newTestHandler(&fakeCounter{})

	rec := postUpdate(h, testSecret, `{"update_id": 5}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if len(pub.deletes) != 0 || len(pub.logs) != 0 {
		t.Error("update without message must not publish")
	}
}

func TestHandler_CleanMessage(t *testing.T) {
	h, pub := newTestHandler(&fakeCounter{})

	rec := postUpdate(h, testSecret, updateBody(7, "hello everyone"))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if len(pub.deletes) != 0 || len(pub.logs) != 0 {
		t.Error("clean message must not publish enforcement commands")
	}
}

func TestHandler_MatchingMessagePublishes(t *testing.T) {
	h, pub := newTestHandler(&fakeCounter{})

	rec := postUpdate(h, testSecret, updateBody(7, "this is a scam, friends"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(pub.deletes) != 1 || len(pub.logs) != 1 {
		t.Fatalf("publishes = %d deletes, %d logs; want 1 and 1", len(pub.deletes), len(pub.logs))
	}

	var del messaging.DeleteCommand
	if err := json.Unmarshal(pub.deletes[0], &del); err != nil {
		t.Fatalf("unmarshal delete: %v", err)
	}
	if del.ChatID != -100555 || del.MessageID != 42 || del.ActionID == "" {
		t.Errorf("DeleteCommand = %+v", del)
	}

	var entry messaging.LogCommand
	if err := json.Unmarshal(pub.logs[0], &entry); err != nil {
		t.Fatalf("unmarshal log: %v", err)
	}
	if entry.ActionID != del.ActionID {
		t.Errorf("log action %q != delete action %q", entry.ActionID, del.ActionID)
	}
	if entry.Keyword != "scam" || entry.SeenCount != 1 || entry.UserID != 7 {
		t.Errorf("LogCommand = %+v", entry)
	}
	if entry.ChatLabel != "Group" || entry.UserLabel != "@newbie" {
		t.Errorf("labels = %q / %q", entry.ChatLabel, entry.UserLabel)
	}
	if entry.Preview != "this is a scam, friends" {
		t.Errorf("Preview = %q", entry.Preview)
	}
}

func TestHandler_TrustedUserPassesThrough(t *testing.T) {
	counter := &fakeCounter{counts: map[int64]int64{7: 5}}
	h, pub := newTestHandler(counter)

	rec := postUpdate(h, testSecret, updateBody(7, "this is a scam, friends"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(pub.deletes) != 0 {
		t.Error("sixth message from a user must pass through even when it matches")
	}
}

func TestHandler_CounterFailureFailsOpen(t *testing.T) {
	counter := &fakeCounter{err: errors.New("redis down")}
	h, pub := newTestHandler(counter)

	rec := postUpdate(h, testSecret, updateBody(7, "this is a scam, friends"))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (fail open)", rec.Code)
	}
	if len(pub.deletes) != 0 || len(pub.logs) != 0 {
		t.Error("counter failure must not trigger enforcement")
	}
}
