// Command server runs the workflow execution backend: an HTTP API that
// compiles workflow templates into prompts, walks a fallback-aware provider
// chain, and records results in a per-user SQLite-backed store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/automate-gpt/go-workflow-backend/internal/config"
	httpapi "github.com/automate-gpt/go-workflow-backend/internal/http"
	"github.com/automate-gpt/go-workflow-backend/internal/observability"
	"github.com/automate-gpt/go-workflow-backend/internal/provider"
	"github.com/automate-gpt/go-workflow-backend/internal/store"
	"github.com/automate-gpt/go-workflow-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	kv, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	st := store.New(kv)
	st.HistoryCap = cfg.HistoryCap

	providers := buildProviderChain(cfg.Providers)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, st, providers, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("version", version).
			Int("providers", len(providers)).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// buildProviderChain assembles the ordered fallback chain from configuration.
// OpenAI is always first; it fails fast with a credential error when no key
// is configured. The HuggingFace fallback joins only when a token is present.
// The deterministic local synthesizer is always last so the chain can never
// be empty.
func buildProviderChain(pc config.ProviderConfig) []provider.Provider {
	var openaiOpts []provider.OpenAIOption
	if pc.OpenAIBaseURL != "" {
		openaiOpts = append(openaiOpts, provider.WithOpenAIBaseURL(pc.OpenAIBaseURL))
	}
	if pc.OpenAIModel != "" {
		openaiOpts = append(openaiOpts, provider.WithOpenAIModel(pc.OpenAIModel))
	}
	chain := []provider.Provider{provider.NewOpenAI(pc.OpenAIAPIKey, openaiOpts...)}

	if pc.HFToken != "" {
		hf, err := provider.NewHuggingFace(pc.HFToken, pc.HFModel)
		if err != nil {
			log.Warn().Err(err).Msg("huggingface fallback unavailable, continuing without it")
		} else {
			chain = append(chain, hf)
		}
	}

	chain = append(chain, provider.NewLocal())
	return chain
}
