package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/carousel"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/session"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/web"
)

func main() {
	logger := logging.New(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = logging.New(cfg.Environment, cfg.LogLevel)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Bool("relay_enabled", cfg.RelayEnabled()).
		Bool("smtp_enabled", cfg.SMTPEnabled()).
		Msg("starting portfolio")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	site, err := content.Load(cfg.ContentPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ContentPath).Msg("failed to load content")
	}
	logger.Info().Int("projects", len(site.Projects)).Msg("content loaded")

	db, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()
	logger.Info().Msg("privacy: visitor tracking enabled with hashed IP addresses")

	m := metrics.New()

	sessions, err := session.New(site, session.Config{
		Capacity: cfg.SessionCapacity,
		IdleTTL:  cfg.SessionIdleTTL,
		Carousel: carousel.Config{
			AutoAdvanceInterval: cfg.AutoAdvanceInterval,
			TransitionLock:      cfg.TransitionLock,
			SettleDelay:         cfg.SettleDelay,
			PlaceholderRef:      cfg.PlaceholderRef,
		},
	},
		session.WithLogger(logger.With().Str("component", "sessions").Logger()),
		session.WithEventHook(func(ev carousel.Event) { m.RecordCarouselEvent(string(ev)) }),
		session.WithSizeHook(func(n int) { m.SessionsActive.Set(float64(n)) }),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session registry")
	}

	srv, err := web.New(web.Config{
		Development:      cfg.IsDevelopment(),
		ImagesDir:        cfg.ImagesDir,
		AdminUsername:    cfg.AdminUsername,
		AdminPassword:    cfg.AdminPassword,
		VisitorRetention: cfg.VisitorRetention,
		ContactTimeout:   cfg.ContactTimeout,
		ContactPerMinute: cfg.ContactRatePerMin,
	}, web.Deps{
		Site:     site,
		Sessions: sessions,
		Store:    db,
		Metrics:  m,
		Sender:   newSender(cfg, logger),
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build web server")
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: /carousel/events holds the response open.
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.RunMaintenance(ctx, time.Hour)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	cancel()

	// Closing sessions ends every open event stream so Shutdown can finish.
	sessions.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	srv.Wait()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(15 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("portfolio stopped")
}

// newSender picks the relay when configured, SMTP otherwise, and wraps
// either in retries.
func newSender(cfg *config.Config, logger zerolog.Logger) contact.Sender {
	retry := contact.DefaultRetryConfig()
	retry.MaxAttempts = cfg.ContactRetries

	switch {
	case cfg.RelayEnabled():
		logger.Info().Msg("contact form delivers through the relay")
		return contact.NewRetrying(contact.NewRelaySender(cfg.ContactRelayURL, cfg.ContactTimeout), retry)
	case cfg.SMTPEnabled():
		logger.Info().Str("host", cfg.SMTPHost).Msg("contact form delivers over SMTP")
		return contact.NewRetrying(contact.NewSMTPSender(contact.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			To:       cfg.ToEmail,
		}), retry)
	default:
		logger.Warn().Msg("contact delivery not configured, submissions are stored only")
		return contact.Disabled
	}
}
