package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/sweeper/mod-bot/internal/auditlog"
	"github.com/sweeper/mod-bot/internal/feed"
	"github.com/sweeper/mod-bot/internal/messaging"
	"github.com/sweeper/mod-bot/internal/metrics"
	"github.com/sweeper/mod-bot/internal/moderate"
	"github.com/sweeper/mod-bot/internal/telegram"
)

// callTimeout bounds each downstream call made for a single command.
const callTimeout = 10 * time.Second

func main() {
	log.Println("Starting moderation enforcer...")

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Fatal("LOG_CHANNEL_ID is required")
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	listenAddr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		listenAddr = v
	}
	migrationsPath := "migrations"
	if v := os.Getenv("MIGRATIONS_PATH"); v != "" {
		migrationsPath = v
	}

	// --- PostgreSQL (audit log) ---
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	cancel()

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		log.Fatalf("failed to init migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// --- NATS (command intake) ---
	natsConfig := messaging.DefaultNATSConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsConfig.Name = "modbot-enforcer"
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	tg := telegram.NewClient(botToken)
	auditStore := auditlog.NewStore(db)
	hub := feed.NewHub()

	// Delete commands: remove the message. The webhook never learns whether
	// this succeeded; failures are logged and counted here.
	err = natsClient.SubscribeEnforceDelete(func(data []byte) {
		var cmd messaging.DeleteCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("[enforcer] bad delete command: %v", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if err := tg.DeleteMessage(ctx, cmd.ChatID, cmd.MessageID); err != nil {
			metrics.DeletionsTotal.WithLabelValues("error").Inc()
			log.Printf("[enforcer] delete action=%s chat=%d msg=%d: %v",
				cmd.ActionID, cmd.ChatID, cmd.MessageID, err)
			return
		}
		metrics.DeletionsTotal.WithLabelValues("ok").Inc()
		log.Printf("[enforcer] deleted action=%s chat=%d msg=%d",
			cmd.ActionID, cmd.ChatID, cmd.MessageID)
	})
	if err != nil {
		log.Fatalf("failed to subscribe to delete commands: %v", err)
	}

	// Log commands: audit record, log channel entry, operator feed.
	err = natsClient.SubscribeEnforceLog(func(data []byte) {
		var cmd messaging.LogCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("[enforcer] bad log command: %v", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		if err := auditStore.Create(ctx, &auditlog.Action{
			ID:        cmd.ActionID,
			ChatID:    cmd.ChatID,
			UserID:    cmd.UserID,
			MessageID: cmd.MessageID,
			Keyword:   cmd.Keyword,
			Plural:    cmd.Plural,
			SeenCount: cmd.SeenCount,
			Preview:   cmd.Preview,
		}); err != nil {
			log.Printf("[enforcer] audit action=%s: %v", cmd.ActionID, err)
		}

		if err := tg.SendMessage(ctx, logChannelID, formatLogEntry(cmd)); err != nil {
			log.Printf("[enforcer] log channel action=%s: %v", cmd.ActionID, err)
		}

		event, err := json.Marshal(feed.Event{
			ActionID:  cmd.ActionID,
			ChatLabel: cmd.ChatLabel,
			UserLabel: cmd.UserLabel,
			Keyword:   cmd.Keyword,
			Plural:    cmd.Plural,
			SeenCount: cmd.SeenCount,
			Preview:   cmd.Preview,
			Ts:        time.Now().Unix(),
		})
		if err == nil {
			hub.Broadcast(event)
		}
	})
	if err != nil {
		log.Fatalf("failed to subscribe to log commands: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/feed", hub.Handler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: listenAddr, Handler: mux}

	log.Printf("Moderation enforcer running")
	log.Printf("  listen_addr:  %s", listenAddr)
	log.Printf("  nats_url:     %s", natsConfig.URL)
	log.Printf("  log_channel:  %s", logChannelID)
	log.Printf("  migrations:   %s", migrationsPath)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	hub.Close()
	natsClient.Close()
	db.Close()
}

// formatLogEntry renders the moderation log line posted to the log channel.
func formatLogEntry(cmd messaging.LogCommand) string {
	keyword := cmd.Keyword
	if cmd.Plural {
		keyword += " (plural)"
	}
	return fmt.Sprintf("🧹 Deleted (probation %d/%d)\nChat: %s\nUser: %s (id %d)\nKeyword: %s\nText: %s",
		cmd.SeenCount, moderate.ProbationWindow,
		cmd.ChatLabel,
		cmd.UserLabel, cmd.UserID,
		keyword,
		cmd.Preview)
}
