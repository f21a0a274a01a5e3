// Package web serves the local clip history UI.
package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/clipstash/internal/config"
	"github.com/hpungsan/clipstash/internal/ops"
	"github.com/hpungsan/clipstash/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates the HTTP server for the clip history UI. The store is
// opened through stores on the first request that needs it. cb may be nil,
// in which case copy actions report the clipboard as unavailable.
func NewServer(stores *store.Lazy, cb ops.Clipboard, cfg *config.Config, version string) *http.Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.WebBind, cfg.WebPort),
		Handler:           NewHandler(stores, cb, version),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed, header-wrapped handler used by NewServer.
func NewHandler(stores *store.Lazy, cb ops.Clipboard, version string) http.Handler {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	h := &Handlers{
		stores:    stores,
		clipboard: cb,
		renderer:  NewRenderer(templateSub, version),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/clips", http.StatusFound)
	})
	mux.HandleFunc("GET /clips", h.HandleList)
	mux.HandleFunc("GET /clips/{id}", h.HandleDetail)
	mux.HandleFunc("POST /clips/{id}/pin", h.HandlePin)
	mux.HandleFunc("POST /clips/{id}/move", h.HandleMove)
	mux.HandleFunc("POST /clips/{id}/copy", h.HandleCopy)
	mux.HandleFunc("POST /clips/{id}/delete", h.HandleDelete)
	mux.HandleFunc("DELETE /clips/{id}", h.HandleDelete)
	mux.HandleFunc("GET /events", h.HandleEvents)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux)
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves srv until ctx is done, then shuts it down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	// Requests inherit ctx so open event streams end on shutdown
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("web UI running", "url", "http://"+srv.Addr)
	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		slog.Warn("web UI is binding to all interfaces and may be reachable from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("web UI shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
