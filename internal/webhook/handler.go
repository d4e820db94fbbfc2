// Package webhook receives Telegram Bot API updates over HTTP, runs the
// moderation decision engine, and dispatches enforcement commands to NATS.
// The handler never waits for a deletion or log write to complete; it
// answers the webhook as soon as the decision is made.
package webhook

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sweeper/mod-bot/internal/messaging"
	"github.com/sweeper/mod-bot/internal/metrics"
	"github.com/sweeper/mod-bot/internal/moderate"
	"github.com/sweeper/mod-bot/internal/telegram"
)

// secretHeader is the header Telegram echoes back when the webhook was
// registered with a secret token.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Publisher dispatches enforcement commands. Satisfied by
// messaging.NATSClient.
type Publisher interface {
	PublishEnforceDelete(data []byte) error
	PublishEnforceLog(data []byte) error
}

// Handler processes webhook updates.
type Handler struct {
	secret string
	engine *moderate.Engine
	pub    Publisher
}

// NewHandler creates a webhook handler. secret must match the token the
// webhook was registered with.
func NewHandler(secret string, engine *moderate.Engine, pub Publisher) *Handler {
	return &Handler{secret: secret, engine: engine, pub: pub}
}

// ServeHTTP implements http.Handler.
//
// Telegram retries updates that don't get a 2xx, so every outcome that
// should NOT be retried (no message, no text, clean text, fail-open pass)
// answers 200. Only an unparsable body gets a 400 and a bad secret a 403.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		io.WriteString(w, "OK")
		return
	}

	if secret := r.Header.Get(secretHeader); secret == "" || secret != h.secret {
		metrics.UpdatesTotal.WithLabelValues("forbidden").Inc()
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&update); err != nil {
		metrics.UpdatesTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	metrics.UpdatesTotal.WithLabelValues("ok").Inc()

	msg := update.Msg()
	if msg == nil {
		io.WriteString(w, "OK")
		return
	}

	start := time.Now()
	decision, err := h.engine.Decide(r.Context(), msg)
	if err != nil {
		// Fail open: without the counter there is no gate, and eating every
		// message during a Redis outage is worse than missing some spam.
		log.Printf("[webhook] decision failed, passing message through: %v", err)
		metrics.CounterFailures.Inc()
		io.WriteString(w, "OK")
		return
	}
	metrics.DecisionLatency.Observe(time.Since(start).Seconds())

	if decision.SeenCount > 0 {
		gate := "trusted"
		if decision.Checked {
			gate = "checked"
		}
		metrics.MessagesTotal.WithLabelValues(gate).Inc()
	}

	if decision.Enforce {
		h.dispatch(msg, decision)
	}

	io.WriteString(w, "OK")
}

// dispatch publishes the delete and log commands for an enforced message.
// Publish failures are logged and dropped; the decision stands either way.
func (h *Handler) dispatch(msg *telegram.Message, decision moderate.Decision) {
	actionID := uuid.NewString()

	del, err := json.Marshal(messaging.DeleteCommand{
		ActionID:  actionID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	})
	if err == nil {
		if err := h.pub.PublishEnforceDelete(del); err != nil {
			log.Printf("[webhook] publish delete action=%s: %v", actionID, err)
		}
	}

	entry, err := json.Marshal(messaging.LogCommand{
		ActionID:  actionID,
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		MessageID: msg.MessageID,
		ChatLabel: telegram.ChatLabel(msg.Chat),
		UserLabel: telegram.UserLabel(msg.From),
		Keyword:   decision.Match.Keyword,
		Plural:    decision.Match.Plural,
		SeenCount: decision.SeenCount,
		Preview:   telegram.Preview(msg.ContentText()),
	})
	if err == nil {
		if err := h.pub.PublishEnforceLog(entry); err != nil {
			log.Printf("[webhook] publish log action=%s: %v", actionID, err)
		}
	}

	metrics.EnforcementsTotal.Inc()
	log.Printf("[webhook] enforce action=%s chat=%d msg=%d keyword=%q probation=%d/%d",
		actionID, msg.Chat.ID, msg.MessageID, decision.Match.Keyword,
		decision.SeenCount, moderate.ProbationWindow)
}
