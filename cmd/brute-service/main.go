// Command brute-service is the central ingestion, enrichment, aggregation,
// and broadcast service: it terminates the bearer-protected ingestion
// endpoints, the decoy HTTP/HTTPS logins, the read-only stats endpoints,
// and the WebSocket fan-out, per spec §6-§9.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chomnr/brute-go/internal/aggregator"
	"github.com/chomnr/brute-go/internal/broadcast"
	"github.com/chomnr/brute-go/internal/config"
	"github.com/chomnr/brute-go/internal/enrichment"
	"github.com/chomnr/brute-go/internal/httpapi"
	"github.com/chomnr/brute-go/internal/middleware"
	"github.com/chomnr/brute-go/internal/projection"
	"github.com/chomnr/brute-go/internal/sink"
	"github.com/chomnr/brute-go/internal/store"
)

const mailboxCapacity = 4096

func main() {
	cfg := config.Service()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("brute-service: opening database: %v", err)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		slog.Warn("brute-service: database not reachable at startup", "error", err)
	}
	pingCancel()

	var precheck enrichment.Precheck
	if cfg.RedisAddr != "" {
		precheck = enrichment.NewRedisPrecheck(cfg.RedisAddr)
		slog.Info("brute-service: Redis enrichment precheck enabled", "addr", cfg.RedisAddr)
	}
	enrichCache := enrichment.New(enrichment.NewIPInfoProvider(cfg.IPInfoToken), db, precheck)

	bus := broadcast.New()
	agg := aggregator.New(mailboxCapacity, db, enrichCache, bus)

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	go agg.Run(shutdownCtx)

	credentialSink := sink.New(agg.Mailbox())
	proj := projection.NewWithMax(db, cfg.MaxStatsLimit)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			MaxCalls: cfg.RateLimit,
			Window:   time.Duration(cfg.RateLimitDuration) * time.Second,
		})
	}

	deps := httpapi.Deps{
		Sink:        credentialSink,
		Store:       db,
		Projection:  proj,
		Bus:         bus,
		RateLimiter: rateLimiter,
		BearerToken: cfg.BearerToken,
	}

	plainServer := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      httpapi.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tlsServer := &http.Server{
		Addr:         cfg.ListenAddressTLS,
		Handler:      httpapi.NewTLSRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("brute-service: shutdown signal received")
		shutdownCancel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := plainServer.Shutdown(ctx); err != nil {
			slog.Error("brute-service: plain server shutdown error", "error", err)
		}
		if err := tlsServer.Shutdown(ctx); err != nil {
			slog.Error("brute-service: tls server shutdown error", "error", err)
		}
	}()

	go func() {
		cert, key := tlsMaterialPaths()
		slog.Info("brute-service: TLS decoy listening", "addr", cfg.ListenAddressTLS)
		if err := tlsServer.ListenAndServeTLS(cert, key); err != nil && err != http.ErrServerClosed {
			slog.Warn("brute-service: TLS decoy listener stopped", "error", err)
		}
	}()

	slog.Info("brute-service: listening", "addr", cfg.ListenAddress, "docker", cfg.RunningInDocker)
	if err := plainServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("brute-service: server failed: %v", err)
	}

	slog.Info("brute-service: stopped")
}

// tlsMaterialPaths resolves the decoy HTTPS listener's certificate and key
// files from the environment, defaulting to a conventional local path. The
// decoy never needs a CA-trusted certificate — it exists to be attacked.
func tlsMaterialPaths() (certFile, keyFile string) {
	cert := os.Getenv("TLS_CERT_FILE")
	key := os.Getenv("TLS_KEY_FILE")
	if cert == "" {
		cert = "decoy.crt"
	}
	if key == "" {
		key = "decoy.key"
	}
	return cert, key
}
