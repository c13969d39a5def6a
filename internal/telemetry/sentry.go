// Package telemetry reports fatal errors and request breadcrumbs to Sentry.
package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

const (
	serviceName = "kbdocs"
	flushWait   = 2 * time.Second
)

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool
}

// Init initializes Sentry error reporting.
// Returns a shutdown function to flush pending events.
// If DSN is empty, returns a no-op shutdown function.
func Init(cfg Config, logger zerolog.Logger) func() {
	if cfg.DSN == "" {
		return func() {}
	}

	if cfg.Environment == "" {
		cfg.Environment = "cli"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		Debug:       cfg.Debug,
		ServerName:  serviceName,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("sentry: failed to initialize, continuing without error reporting")
		return func() {}
	}

	logger.Debug().Str("environment", cfg.Environment).Msg("sentry: error reporting initialized")
	return func() {
		sentry.Flush(flushWait)
	}
}

// CaptureError captures an error to Sentry with the current context.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
}

// AddBreadcrumb adds a breadcrumb to the current scope.
func AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	breadcrumb := &sentry.Breadcrumb{
		Type:      "http",
		Category:  category,
		Message:   message,
		Data:      data,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
	} else {
		sentry.AddBreadcrumb(breadcrumb)
	}
}
