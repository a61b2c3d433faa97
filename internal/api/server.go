// Package api provides the HTTP API for route planning and travel tracking.
// The world map is loaded once at startup and shared read-only by all requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/talgya/hexroute/internal/movement"
	"github.com/talgya/hexroute/internal/pathfind"
	"github.com/talgya/hexroute/internal/persistence"
	"github.com/talgya/hexroute/internal/travel"
	"github.com/talgya/hexroute/internal/world"
)

// Server serves route planning over HTTP.
type Server struct {
	Map         *world.Map
	DB          *persistence.DB
	Port        int
	TimeUnit    time.Duration // wall-clock length of one movement cost unit
	RateLimit   float64       // route requests per second per client, 0 disables limiting
	CORSOrigins []string

	// Now returns the current time; defaults to time.Now.
	Now func() time.Time

	httpServer *http.Server
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Handler builds the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/status", s.handleStatus)
		api.Get("/hex/{q}/{r}", s.handleHexDetail)

		api.Group(func(limited chi.Router) {
			if s.RateLimit > 0 {
				limiter := NewRateLimiter(s.RateLimit, int(s.RateLimit*2))
				limited.Use(limiter.Middleware)
			}
			limited.Get("/route", s.handleRoute)
			limited.Get("/local-route", s.handleLocalRoute)
			limited.Post("/travels", s.handleStartTravel)
		})

		api.Get("/travels", s.handleListTravels)
		api.Get("/travels/{id}", s.handleTravelDetail)
	})
	return r
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "rate_limit", s.RateLimit)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts := world.TerrainCounts(s.Map)
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "hexroute",
		"hexes":       s.Map.HexCount(),
		"radius":      s.Map.Radius,
		"wrap_width":  s.Map.Width,
		"terrain":     counts,
		"time_unit":   s.TimeUnit.String(),
		"local_range": pathfind.LocalRadius,
	})
}

type hexDetail struct {
	*world.Hex
	Key         string  `json:"key"`
	Cost        float64 `json:"cost"`
	Traversable bool    `json:"traversable"`
}

func (s *Server) handleHexDetail(w http.ResponseWriter, r *http.Request) {
	q, errQ := strconv.Atoi(chi.URLParam(r, "q"))
	rr, errR := strconv.Atoi(chi.URLParam(r, "r"))
	if errQ != nil || errR != nil {
		http.Error(w, "invalid hex coordinate", http.StatusBadRequest)
		return
	}
	hex, ok := s.Map.Tile(world.HexCoord{Q: q, R: rr})
	if !ok {
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	}

	detail := hexDetail{Hex: hex, Key: hex.Coord.Key(), Traversable: movement.IsTraversable(hex)}
	if detail.Traversable {
		detail.Cost = movement.Cost(hex)
	}
	writeJSON(w, http.StatusOK, detail)
}

type routeResponse struct {
	From           world.HexCoord        `json:"from"`
	To             world.HexCoord        `json:"to"`
	Route          pathfind.Route        `json:"route"`
	Steps          int                   `json:"steps"`
	Cost           float64               `json:"cost"`
	Speed          float64               `json:"speed"`
	Duration       float64               `json:"duration"`
	DurationText   string                `json:"duration_text"`
	TerrainSummary map[world.Terrain]int `json:"terrain_summary"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseEndpoints(w, r)
	if !ok {
		return
	}
	speed := 1.0
	if v := r.URL.Query().Get("speed"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || travel.ValidateSpeed(parsed) != nil {
			http.Error(w, "speed must be a positive number", http.StatusBadRequest)
			return
		}
		speed = parsed
	}

	route, found := pathfind.FindRoute(from, to, s.Map)
	if !found {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	var wall time.Duration
	duration, err := travel.TotalDuration(route, s.Map, speed)
	if err == nil {
		wall, err = travel.WallClock(duration, s.TimeUnit)
	}
	if errors.Is(err, travel.ErrOverflow) {
		http.Error(w, "speed too low: travel duration out of range", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("route duration failed", "from", from, "to", to, "error", err)
		http.Error(w, "route duration failed", http.StatusInternalServerError)
		return
	}

	slog.Debug("route computed", "from", from, "to", to, "hexes", len(route))
	writeJSON(w, http.StatusOK, routeResponse{
		From:           from,
		To:             to,
		Route:          route,
		Steps:          route.Steps(),
		Cost:           route.Cost(s.Map),
		Speed:          speed,
		Duration:       duration,
		DurationText:   travel.FormatDuration(wall),
		TerrainSummary: travel.TerrainSummary(route, s.Map),
	})
}

func (s *Server) handleLocalRoute(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseEndpoints(w, r)
	if !ok {
		return
	}
	route, found := pathfind.FindLocalRoute(from, to)
	if !found {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":  from,
		"to":    to,
		"route": route,
		"steps": route.Steps(),
	})
}

type startTravelRequest struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Speed float64 `json:"speed"`
}

type travelView struct {
	*travel.Traversal
	Position      world.HexCoord  `json:"position"`
	Progress      travel.Progress `json:"progress"`
	Arrived       bool            `json:"arrived"`
	ETAText       string          `json:"eta_text"`
	RemainingText string          `json:"remaining_text"`
}

func (s *Server) view(t *travel.Traversal, now time.Time) travelView {
	return travelView{
		Traversal:     t,
		Position:      t.Position(),
		Progress:      t.Progress(),
		Arrived:       t.Arrived(),
		ETAText:       travel.FormatETA(t.ETA, now),
		RemainingText: travel.FormatDuration(t.Remaining()),
	}
}

func (s *Server) handleStartTravel(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "travel tracking disabled", http.StatusServiceUnavailable)
		return
	}
	var req startTravelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	from, errFrom := world.ParseKey(req.From)
	to, errTo := world.ParseKey(req.To)
	if errFrom != nil || errTo != nil {
		http.Error(w, "from and to must be \"q,r\"", http.StatusBadRequest)
		return
	}
	if err := travel.ValidateSpeed(req.Speed); err != nil {
		http.Error(w, "speed must be a positive number", http.StatusBadRequest)
		return
	}

	route, found := pathfind.FindRoute(from, to, s.Map)
	if !found {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	now := s.now()
	t, err := travel.NewTraversal(route, s.Map, req.Speed, s.TimeUnit, now)
	if errors.Is(err, travel.ErrOverflow) {
		http.Error(w, "speed too low: travel duration out of range", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("start traversal failed", "from", from, "to", to, "error", err)
		http.Error(w, "start traversal failed", http.StatusInternalServerError)
		return
	}
	if err := s.DB.SaveTraversal(t); err != nil {
		slog.Error("save traversal failed", "id", t.ID, "error", err)
		http.Error(w, "save traversal failed", http.StatusInternalServerError)
		return
	}

	slog.Info("traversal started", "id", t.ID, "from", from, "to", to, "hexes", len(route), "eta", t.ETA)
	writeJSON(w, http.StatusCreated, s.view(t, now))
}

func (s *Server) handleListTravels(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "travel tracking disabled", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			http.Error(w, "limit must be 1-200", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := s.DB.ListTraversals(limit)
	if err != nil {
		slog.Error("list traversals failed", "error", err)
		http.Error(w, "list traversals failed", http.StatusInternalServerError)
		return
	}
	now := s.now()
	views := make([]travelView, 0, len(list))
	for _, t := range list {
		t.AdvanceTo(now)
		views = append(views, s.view(t, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleTravelDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "travel tracking disabled", http.StatusServiceUnavailable)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid travel id", http.StatusBadRequest)
		return
	}
	t, err := s.DB.LoadTraversal(id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "travel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load traversal failed", "id", id, "error", err)
		http.Error(w, "load traversal failed", http.StatusInternalServerError)
		return
	}

	now := s.now()
	t.AdvanceTo(now)
	if err := s.DB.SaveTraversal(t); err != nil {
		slog.Warn("persist traversal progress failed", "id", id, "error", err)
	}
	writeJSON(w, http.StatusOK, s.view(t, now))
}

// parseEndpoints reads the from and to query parameters as "q,r" keys.
func parseEndpoints(w http.ResponseWriter, r *http.Request) (world.HexCoord, world.HexCoord, bool) {
	from, err := world.ParseKey(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "from must be \"q,r\"", http.StatusBadRequest)
		return world.HexCoord{}, world.HexCoord{}, false
	}
	to, err := world.ParseKey(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "to must be \"q,r\"", http.StatusBadRequest)
		return world.HexCoord{}, world.HexCoord{}, false
	}
	return from, to, true
}

// writeJSON encodes before writing so an unencodable value becomes a 500
// instead of a truncated success.
func writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("encode response failed", "error", err)
		http.Error(w, "encode response failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
