// Package server provides HTTP server initialization and lifecycle management
// for the Converse REST API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/skellner/converse/internal/config"
	"github.com/skellner/converse/internal/session"
	"github.com/skellner/converse/internal/storage"
)

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the TurnHub for wiring turn event broadcasts.
// The archive parameter may be nil; archive routes then respond 501.
func Start(ctx context.Context, cfg *config.Config, sessions *session.Store, archive storage.ArchiveStore) (string, *TurnHub) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}
	actualAddr := listener.Addr().String()

	mux := http.NewServeMux()

	// WebSocket origins come from the bound address, so port 0 and
	// non-default ports accept their own dashboards.
	wsHub := NewTurnHub(originPatterns(cfg, actualAddr))

	apiHandlers := NewAPIHandlers(sessions, archive, wsHub)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			apiHandlers.ListSessions(w, r)
		case http.MethodPost:
			apiHandlers.CreateSession(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			apiHandlers.DestroySession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/turns", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			apiHandlers.ProcessTurn(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/entities/{text}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apiHandlers.GetEntityContext(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/recent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apiHandlers.GetRecentContext(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apiHandlers.ExportSession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			apiHandlers.ArchiveSession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/archive", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apiHandlers.ListArchive(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/archive/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apiHandlers.GetArchivedSession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health endpoint - no auth required, used by monitoring
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", requireAuth(apiMux, cfg.Security))

	// WebSocket endpoint (no auth required - origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Wrap entire server with rate limiting (10 req/sec, burst of 20),
	// then security headers
	handler := throttle(mux, rate.NewLimiter(rate.Limit(10), 20))
	handler = secureHeaders(handler)

	// Create server with security timeouts
	server := &http.Server{
		Addr:         actualAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}

// originPatterns builds the WebSocket origin allowlist: localhost variants on
// the bound port, plus the configured host when it differs.
func originPatterns(cfg *config.Config, addr string) []string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		port = fmt.Sprintf("%d", cfg.Server.Port)
	}
	patterns := []string{"localhost:" + port, "127.0.0.1:" + port}
	if host := cfg.Server.Host; host != "" && host != "localhost" && host != "127.0.0.1" && host != "0.0.0.0" {
		patterns = append(patterns, host+":"+port)
	}
	return patterns
}
