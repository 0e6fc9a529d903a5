package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/setlog/internal/tracker"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	log     *slog.Logger
	router  chi.Router

	// The tracker is single-writer; handler access is serialized.
	mu sync.Mutex
}

// New creates a new Server with all routes configured.
func New(tr *tracker.Tracker, log *slog.Logger) *Server {
	s := &Server{
		tracker: tr,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		r.Get("/state", s.handleState)
		r.Route("/state/{day}", func(r chi.Router) {
			r.Get("/", s.handleDayState)
			r.Post("/reset", s.handleResetDay)
			r.Post("/finalize", s.handleFinalize)
			r.Route("/{key}", func(r chi.Router) {
				r.Post("/reset", s.handleResetExercise)
				r.Get("/{idx}", s.handleGetSet)
				r.Patch("/{idx}", s.handlePatchSet)
				r.Post("/{idx}/toggle", s.handleToggleSet)
			})
		})

		r.Get("/progress", s.handleAllProgress)
		r.Get("/progress/{day}", s.handleProgress)

		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/history/export", s.handleExportHistory)
		r.Post("/history/import", s.handleImportHistory)
		r.Get("/history/{id}", s.handleHistoryEntry)

		r.Get("/analytics/streak", s.handleStreak)
		r.Get("/analytics/prs", s.handlePersonalRecords)
		r.Get("/analytics/weekly", s.handleWeekly)
		r.Get("/analytics/suggestions", s.handleSuggestions)
		r.Get("/analytics/summary", s.handleSummary)

		r.Get("/rest", s.handleRest)
		r.Post("/rest", s.handleStartRest)

		r.Get("/modifier", s.handleModifier)
		r.Put("/modifier", s.handleSetModifier)
	})
}
