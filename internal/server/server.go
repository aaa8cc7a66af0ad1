// Package server is the hosted HTTP API: sync-in endpoints the clients'
// outbox replays into, and read endpoints for dashboards. Sync writes are
// API-key protected; read endpoints rely on the tailnet for access control.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	catalog models.ExerciseCatalog
	log     *slog.Logger
	apiKey  string
	lc      *local.Client
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, catalog models.ExerciseCatalog, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		catalog: catalog,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale wires the tsnet local client used to resolve the caller's
// tailnet identity. Without it every request maps to the local dev user.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

// MountMCP exposes an MCP transport at /mcp. The resolved user identity is
// forwarded into the MCP context so tool queries stay scoped.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := mcp.WithUserID(r.Context(), userIDFromContext(r))
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.Identity)

	// Sync endpoints (API key required)
	s.router.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/sessions", s.handleSyncSessions)
		r.Post("/records", s.handleSyncRecords)
		r.Post("/cursor", s.handleSyncCursor)
		r.Post("/missions", s.handleSyncMissions)
	})

	// Dashboard endpoints (no API key, the tailnet gates access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/sessions", s.handleQuerySessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/records", s.handleQueryRecords)
	s.router.Get("/api/v1/missions", s.handleQueryMissions)
	s.router.Get("/api/v1/cursor", s.handleGetCursor)
	s.router.Get("/api/v1/progression", s.handleProgression)
	s.router.Get("/api/v1/volume/weekly", s.handleWeeklyVolume)
	s.router.Get("/api/v1/stats", s.handleStats)
}
