// Package server provides the optional holding page served while the boot
// sequence prepares the application.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const holdingBody = "Winning Ticket is starting, try again shortly.\n"

// Holding binds the application port during preparation and answers with
// 503 until it is released. The listener must be fully closed before the
// handoff so gunicorn can bind the same port.
type Holding struct {
	log  *slog.Logger
	http *http.Server
	ln   net.Listener
}

func NewHolding(port int, log *slog.Logger) *Holding {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(holdingBody))
	})

	return &Holding{
		log: log,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Start binds the port and serves in the background. A bind failure is
// returned so the caller can decide to continue without the holding page.
func (h *Holding) Start() error {
	ln, err := net.Listen("tcp", h.http.Addr)
	if err != nil {
		return fmt.Errorf("holding page bind failed: %w", err)
	}
	h.ln = ln

	go func() {
		if err := h.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.log.Error("holding page server error", "error", err)
		}
	}()

	h.log.Info("holding page up", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (h *Holding) Addr() string {
	if h.ln == nil {
		return ""
	}
	return h.ln.Addr().String()
}

// Release shuts the server down and frees the port for the real server.
func (h *Holding) Release(ctx context.Context) error {
	if h.ln == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.http.Shutdown(ctx); err != nil {
		return err
	}
	h.log.Info("holding page released")
	return nil
}
