// Package server exposes the Zeta core over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pantheonlabs/zeta/internal/autonomy"
	"github.com/pantheonlabs/zeta/internal/blob"
	"github.com/pantheonlabs/zeta/internal/chat"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB            *gorm.DB
	Pipeline      *chat.Pipeline
	Applier       *autonomy.Applier
	DefaultPolicy autonomy.Policy
	Blobs         *blob.LocalStore // optional; mounts /files when set
	Port          int
	Out           io.Writer
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("server: db is required")
	}
	if opts.Pipeline == nil {
		return fmt.Errorf("server: chat pipeline is required")
	}
	if opts.Applier == nil {
		return fmt.Errorf("server: plan applier is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.DefaultPolicy == "" {
		opts.DefaultPolicy = autonomy.PolicyShadow
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Zeta API listening at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
