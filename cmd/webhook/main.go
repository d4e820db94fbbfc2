package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweeper/mod-bot/internal/keyword"
	"github.com/sweeper/mod-bot/internal/messaging"
	"github.com/sweeper/mod-bot/internal/metrics"
	"github.com/sweeper/mod-bot/internal/moderate"
	"github.com/sweeper/mod-bot/internal/probation"
	"github.com/sweeper/mod-bot/internal/webhook"
)

func main() {
	log.Println("Starting moderation webhook receiver...")

	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("WEBHOOK_SECRET is required")
	}

	listenAddr := ":8080"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		listenAddr = v
	}
	webhookPath := "/webhook"
	if v := os.Getenv("WEBHOOK_PATH"); v != "" {
		webhookPath = v
	}

	// --- Redis (probation counters) ---
	redisAddr := "localhost:6379"
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		redisAddr = v
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()

	// --- NATS (enforcement dispatch) ---
	natsConfig := messaging.DefaultNATSConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsConfig.Name = "modbot-webhook"
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// --- Keyword list ---
	keywords := keyword.DefaultKeywords
	keywordsFile := os.Getenv("KEYWORDS_FILE")
	if keywordsFile != "" {
		keywords, err = keyword.LoadFile(keywordsFile)
		if err != nil {
			log.Fatalf("failed to load keywords: %v", err)
		}
	}
	matcher := keyword.NewMatcher(keywords)
	if matcher.Len() == 0 {
		log.Fatal("keyword list is empty after normalization")
	}

	// --- Always-moderate set ---
	alwaysIDs, err := probation.ParseIDList(os.Getenv("ALWAYS_MODERATE_IDS"))
	if err != nil {
		log.Fatalf("failed to parse ALWAYS_MODERATE_IDS: %v", err)
	}

	engine := moderate.NewEngine(
		probation.NewStore(rdb),
		matcher,
		probation.NewAlwaysModerateSet(alwaysIDs),
	)

	mux := http.NewServeMux()
	mux.Handle(webhookPath, webhook.NewHandler(secret, engine, natsClient))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("Moderation webhook receiver running")
	log.Printf("  listen_addr:      %s", listenAddr)
	log.Printf("  webhook_path:     %s", webhookPath)
	log.Printf("  redis_addr:       %s", redisAddr)
	log.Printf("  nats_url:         %s", natsConfig.URL)
	log.Printf("  keywords:         %d (file: %s)", matcher.Len(), orDefault(keywordsFile, "built-in"))
	log.Printf("  always_moderate:  %d ids", len(alwaysIDs))
	log.Printf("  probation_window: %d messages", moderate.ProbationWindow)

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
	natsClient.Close()
	rdb.Close()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
