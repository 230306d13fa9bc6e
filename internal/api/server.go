// Package api provides REST API endpoints over the flight store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"igc_parser/internal/export"
	"igc_parser/internal/flight"
	"igc_parser/internal/igc"
	"igc_parser/internal/input"
	"igc_parser/internal/storage"
)

// maxUploadSize bounds POST /flights bodies.
const maxUploadSize = 32 << 20

// Store is the part of the flight store the server needs. *storage.SQLiteDB
// implements it.
type Store interface {
	SaveFlight(ctx context.Context, rec storage.FlightRecord) error
	ListFlights(ctx context.Context, p storage.QueryParams) ([]storage.FlightRecord, error)
	GetFlight(ctx context.Context, id uuid.UUID) (*storage.FlightRecord, error)
	GetStats(ctx context.Context) (*storage.Stats, error)
}

// FlightServer provides REST API access to stored flights.
type FlightServer struct {
	store       Store
	opts        flight.Options
	log         *slog.Logger
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.

	// Options used to parse uploaded logs.
	Parse  flight.Options
	Logger *slog.Logger
}

// NewFlightServer creates a new API server.
func NewFlightServer(store Store, cfg Config) *FlightServer {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &FlightServer{
		store:       store,
		opts:        cfg.Parse,
		log:         log,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Run starts the HTTP server.
func (s *FlightServer) Run() error {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for browser access.
	r.Use(corsMiddleware)

	r.Mount("/api/v1", s.Router())

	addr := ":" + strconv.Itoa(s.port)
	s.log.Info("flight API starting", slog.String("addr", "http://localhost"+addr), slog.Bool("auth", s.authEnabled))
	return http.ListenAndServe(addr, r)
}

// Router returns the configured chi router for embedding in other servers.
func (s *FlightServer) Router() chi.Router {
	r := chi.NewRouter()

	// Health check (no auth required).
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		// Optional authentication.
		if s.authEnabled {
			r.Use(s.authMiddleware)
		}

		r.Get("/stats", s.handleStats)
		r.Get("/flights", s.handleListFlights)
		r.Post("/flights", s.handleUpload)
		r.Route("/flights/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetFlight)
			r.Get("/metadata", s.handleGetMetadata)
			r.Get("/turnpoints", s.handleTurnpoints)
			r.Get("/geojson", s.handleExport(export.FormatGeoJSON, "application/geo+json"))
			r.Get("/kml", s.handleExport(export.FormatKML, "application/vnd.google-earth.kml+xml"))
		})
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *FlightServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}

		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FlightSummary is the JSON form of a stored flight without its document.
type FlightSummary struct {
	ID           string     `json:"id"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Serial       string     `json:"serial,omitempty"`
	Pilot        string     `json:"pilot,omitempty"`
	GliderID     string     `json:"glider_id,omitempty"`
	Date         string     `json:"date,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	Fixes        int        `json:"fixes"`
	DistanceM    float64    `json:"distance_m"`
	DurationS    int        `json:"duration_s"`
	MaxSpeed     float64    `json:"max_speed"`
}

func recordToSummary(r storage.FlightRecord) FlightSummary {
	return FlightSummary{
		ID:           r.ID.String(),
		Manufacturer: r.Manufacturer,
		Serial:       r.Serial,
		Pilot:        r.Pilot,
		GliderID:     r.GliderID,
		Date:         r.Date,
		Start:        r.Start,
		End:          r.End,
		Fixes:        r.FixCount,
		DistanceM:    r.DistanceM,
		DurationS:    r.DurationS,
		MaxSpeed:     r.MaxSpeed,
	}
}

func (s *FlightServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *FlightServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flights":        stats.Flights,
		"fixes":          stats.Fixes,
		"total_distance": stats.TotalDistance,
		"total_duration": stats.TotalDuration,
		"events":         stats.ByCategory,
	})
}

func (s *FlightServer) handleListFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := storage.QueryParams{
		Pilot:     q.Get("pilot"),
		GliderID:  q.Get("glider"),
		DateFrom:  q.Get("from"),
		DateTo:    q.Get("to"),
		OrderDesc: q.Get("order") == "desc",
	}
	for _, d := range []string{p.DateFrom, p.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
			return
		}
	}
	var err error
	if p.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if p.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	if p.Limit > 1000 {
		writeError(w, http.StatusBadRequest, "Maximum limit is 1000")
		return
	}

	recs, err := s.store.ListFlights(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]FlightSummary, len(recs))
	for i, rec := range recs {
		out[i] = recordToSummary(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil && n < 0 {
		err = errors.New("negative")
	}
	return n, err
}

// loadFlight resolves the {id} parameter. It writes the error response and
// returns nil when the flight cannot be served.
func (s *FlightServer) loadFlight(w http.ResponseWriter, r *http.Request) (*storage.FlightRecord, *igc.Flight) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid flight ID")
		return nil, nil
	}
	rec, err := s.store.GetFlight(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Flight not found")
		return nil, nil
	}
	f, err := rec.Flight()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil
	}
	return rec, f
}

func (s *FlightServer) handleGetFlight(w http.ResponseWriter, r *http.Request) {
	if _, f := s.loadFlight(w, r); f != nil {
		writeJSON(w, http.StatusOK, f)
	}
}

func (s *FlightServer) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	rec, f := s.loadFlight(w, r)
	if f == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flight":   recordToSummary(*rec),
		"metadata": f.Metadata(),
	})
}

func (s *FlightServer) handleTurnpoints(w http.ResponseWriter, r *http.Request) {
	radius := s.opts.TurnpointRadius
	if v := r.URL.Query().Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid radius")
			return
		}
		radius = parsed
	}

	_, f := s.loadFlight(w, r)
	if f == nil {
		return
	}
	v := flight.ValidateTurnpoints(f, radius)
	if v == nil {
		writeError(w, http.StatusNotFound, "Flight has no task to validate")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *FlightServer) handleExport(format export.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, f := s.loadFlight(w, r)
		if f == nil {
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if err := export.Write(w, format, f, rec.ID.String()); err != nil {
			s.log.Error("export failed", slog.String("id", rec.ID.String()), slog.Any("error", err))
		}
	}
}

// UploadResponse is returned by POST /flights.
type UploadResponse struct {
	ID       string `json:"id"`
	Fixes    int    `json:"fixes"`
	Rejected int    `json:"rejected_fixes"`
}

func (s *FlightServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := input.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body: "+err.Error())
		return
	}

	f, err := flight.Parse(r.Context(), data, s.opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, parseErrorMessage(err))
		return
	}
	rec, err := storage.NewFlightRecord(f, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.SaveFlight(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("flight uploaded", slog.String("id", rec.ID.String()), slog.Int("fixes", rec.FixCount))

	resp := UploadResponse{ID: rec.ID.String(), Fixes: rec.FixCount}
	if f.Statistics != nil {
		resp.Rejected = f.Statistics.RejectedFixes
	}
	writeJSON(w, http.StatusCreated, resp)
}

func parseErrorMessage(err error) string {
	var se *igc.StructuralError
	var fe *igc.FieldValidationError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("Structural error: %v", err)
	case errors.As(err, &fe):
		return fmt.Sprintf("Validation error: %v", err)
	}
	return err.Error()
}

// Helper functions.

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
