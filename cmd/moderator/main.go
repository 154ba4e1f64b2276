package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillswap/backend/internal/messaging"
	"github.com/skillswap/backend/internal/metrics"
	"github.com/skillswap/backend/internal/moderation"
	"github.com/skillswap/backend/internal/suspension"
)

func main() {
	log.Println("Starting SkillSwap moderation service...")

	// Redis setup.
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

	// NATS setup.
	natsConfig := messaging.DefaultNATSConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsConfig.Name = "skillswap-moderator"

	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	bans := suspension.NewStore(rdb)

	// Consume report events and apply the auto-suspension policy: each
	// report is a strike, and enough strikes inside the window suspend the
	// account for an escalating duration.
	err = natsClient.SubscribeReports(func(data []byte) {
		var event moderation.ReportEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("[moderator] failed to unmarshal report: %v", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		suspended, duration, err := bans.RecordStrike(ctx, event.ReportedID, event.Reason)
		if err != nil {
			log.Printf("[moderator] strike for user=%s failed: %v", event.ReportedID, err)
			return
		}

		if suspended {
			metrics.SuspensionsTotal.Inc()
			log.Printf("[moderator] SUSPENDED user=%s duration=%v reason=%s reporter=%s match=%s",
				event.ReportedID, duration, event.Reason, event.ReporterID, event.MatchID)
		} else {
			strikes, _ := bans.Strikes(ctx, event.ReportedID)
			log.Printf("[moderator] strike recorded user=%s strikes=%d reason=%s",
				event.ReportedID, strikes, event.Reason)
		}
	})
	if err != nil {
		log.Fatalf("failed to subscribe to report events: %v", err)
	}

	// Expose Prometheus metrics.
	metricsAddr := ":9092"
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		metricsAddr = v
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	log.Printf("SkillSwap moderation service running")
	log.Printf("  redis_addr:   %s", redisAddr)
	log.Printf("  nats_url:     %s", natsConfig.URL)
	log.Printf("  metrics_addr: %s", metricsAddr)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
	rdb.Close()
}
