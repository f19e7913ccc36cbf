package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvribeiro/zapgastos/internal/api/middleware"
	"github.com/mvribeiro/zapgastos/internal/config"
	"github.com/mvribeiro/zapgastos/internal/extract"
	"github.com/mvribeiro/zapgastos/internal/ledger"
	"github.com/mvribeiro/zapgastos/internal/logger"
	"github.com/mvribeiro/zapgastos/internal/notify"
	"github.com/mvribeiro/zapgastos/internal/pipeline"
	"github.com/mvribeiro/zapgastos/internal/webhook"
)

func main() {
	log := logger.New()

	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	if cfg.SpreadsheetID == "" {
		log.Warn().Msg("No spreadsheet configured - ledger appends will fail")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("No Gemini API key configured - extraction will fall back to defaults")
	}
	if cfg.VerifyToken == "" {
		log.Warn().Msg("No verify token configured - webhook subscription handshake will be rejected")
	}

	// Extraction.
	gen := extract.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)
	extractor := extract.New(gen, log)

	// Ledger, optionally mirrored to BigQuery.
	var appender ledger.Appender = ledger.NewSheetsLedger(cfg.SpreadsheetID, cfg.SheetName, cfg.CredentialsFile, log)
	if cfg.MirrorConfigured() {
		mirror := ledger.NewBigQueryMirror(cfg.BigQueryProject, cfg.BigQueryDataset, log)
		appender = ledger.Fanout(appender, mirror, log)
		log.Info().Str("dataset", cfg.BigQueryDataset).Msg("BigQuery ledger mirror enabled")
	}

	// Reply delivery: Twilio primary when fully configured, Meta fallback.
	var primary, secondary notify.Sender
	if cfg.TwilioConfigured() {
		primary = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	}
	if cfg.MetaConfigured() {
		secondary = notify.NewMetaSender(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.FixBrazilMobile)
	}
	if primary == nil && secondary == nil {
		log.Warn().Msg("No messaging provider configured - confirmations will be dropped")
	}
	notifier := notify.New(primary, secondary, log)

	pipe := pipeline.New(extractor, appender, notifier, log)
	hookHandler := webhook.NewHandler(pipe, cfg.VerifyToken, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			hookHandler.Verify(w, r)
		case http.MethodPost:
			hookHandler.Receive(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(mux),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting webhook server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
