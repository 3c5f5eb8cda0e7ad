// Package dashboard serves the operator web UI for instances, schedules and
// recent activity.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/wadash/internal/gateway"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/notify"
	"go.uber.org/zap"
)

// ActivitySource lists recorded notices, newest first.
type ActivitySource interface {
	Recent(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// Deps are the collaborators the dashboard renders from.
type Deps struct {
	Gateway gateway.Gateway
	// Feed collects notices for flash toasts and the event stream. It must
	// also be reachable from Notifier.
	Feed     *notify.Feed
	Notifier notify.Notifier
	// Journal is optional; without it the activity page shows the feed.
	Journal ActivitySource
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Deps
	Port int
	Out  io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8090
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts.Deps)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("dashboard: shutdown", zap.Error(err))
		}
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}
	zap.L().Info("dashboard listening", zap.String("addr", addr))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with templates, static assets and routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("dashboard: gateway is required")
	}
	if deps.Feed == nil {
		deps.Feed = notify.NewFeed(notify.DefaultFeedSize)
	}
	if deps.Notifier == nil {
		deps.Notifier = deps.Feed
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, newHandlers(deps))
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2 15:04:05")
	},
	"urlsafe": func(s string) template.URL {
		return template.URL(s)
	},
}

// requestLogger logs each request through zap at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Debug("dashboard request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
