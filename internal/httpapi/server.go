// Package httpapi exposes the hydrology operations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/katalvlaran/watershed/internal/service"
	"github.com/katalvlaran/watershed/snap"
)

// Service is the set of operations served by the handler.
type Service interface {
	FlowPath(ctx context.Context, p orb.Point) (*geojson.Feature, error)
	UpstreamArea(ctx context.Context, p orb.Point, tolerance float64) (*geojson.Feature, error)
	QueryRaster(ctx context.Context, id int, min, max *float64) (*geojson.Feature, error)
	QueryPoints(ctx context.Context, id int, points []service.PointQuery) ([]service.PointResult, error)
	Layers() ([]service.LayerInfo, error)
	Layer(id int) (service.LayerInfo, error)
}

// Server holds the handler state.
type Server struct {
	svc  Service
	opts Options
}

// operation describes one endpoint on the root resource.
type operation struct {
	Name       string `json:"name"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Parameters string `json:"parameters"`
}

var operations = []operation{
	{"flowPath", "POST", "/flowPath", "pourPoint"},
	{"upstreamArea", "POST", "/upstreamArea", "outlet, tolerance"},
	{"queryRaster", "POST", "/layers/{id}/queryRaster", "min, max"},
	{"queryPoints", "POST", "/layers/{id}/queryPoints", "points"},
}

// NewHandler builds the router for svc.
func NewHandler(svc Service, opts ...Option) http.Handler {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Server{svc: svc, opts: o}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if o.Timeout > 0 {
		r.Use(middleware.Timeout(o.Timeout))
	}

	r.Get("/health", s.health)
	r.Get("/", s.root)
	r.Route("/layers", func(r chi.Router) {
		r.Get("/", s.layers)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.layer)
			r.Get("/queryRaster", s.queryRaster)
			r.Post("/queryRaster", s.queryRaster)
			r.Get("/queryPoints", s.queryPoints)
			r.Post("/queryPoints", s.queryPoints)
		})
	})
	r.Get("/flowPath", s.flowPath)
	r.Post("/flowPath", s.flowPath)
	r.Get("/upstreamArea", s.upstreamArea)
	r.Post("/upstreamArea", s.upstreamArea)
	if o.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestID tags the request with the caller's X-Request-Id or a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	layers, err := s.svc.Layers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "watershed",
		"description": "Flow paths, upstream areas and raster queries over D8 flow direction grids",
		"operations":  operations,
		"layers":      layers,
	})
}

func (s *Server) layers(w http.ResponseWriter, _ *http.Request) {
	layers, err := s.svc.Layers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layers": layers})
}

func (s *Server) layer(w http.ResponseWriter, r *http.Request) {
	id, err := layerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.svc.Layer(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) flowPath(w http.ResponseWriter, r *http.Request) {
	var req flowPathRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := req.PourPoint.point("pourPoint")
	if err != nil {
		s.writeError(w, err)
		return
	}
	f, err := s.svc.FlowPath(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, geojson.NewFeatureCollection().Append(f))
}

func (s *Server) upstreamArea(w http.ResponseWriter, r *http.Request) {
	var req upstreamAreaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := req.Outlet.point("outlet")
	if err != nil {
		s.writeError(w, err)
		return
	}
	tol := s.opts.Tolerance
	if req.Tolerance != nil {
		tol = *req.Tolerance
	}
	f, err := s.svc.UpstreamArea(r.Context(), p, tol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, geojson.NewFeatureCollection().Append(f))
}

func (s *Server) queryRaster(w http.ResponseWriter, r *http.Request) {
	id, err := layerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req queryRasterRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	f, err := s.svc.QueryRaster(r.Context(), id, req.Min, req.Max)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, geojson.NewFeatureCollection().Append(f))
}

func (s *Server) queryPoints(w http.ResponseWriter, r *http.Request) {
	id, err := layerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req queryPointsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	queries := make([]service.PointQuery, len(req.Points))
	for i, q := range req.Points {
		p, err := (&pointParam{X: q.X, Y: q.Y}).point(fmt.Sprintf("points[%d]", i))
		if err != nil {
			s.writeError(w, err)
			return
		}
		queries[i] = service.PointQuery{ID: q.ID, Point: p}
	}
	results, err := s.svc.QueryPoints(r.Context(), id, queries)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func layerID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", service.ErrLayerNotFound, raw)
	}
	return id, nil
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// status maps an operation error to an HTTP status code.
func status(err error) int {
	switch {
	case errors.Is(err, service.ErrLayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrNoRange),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrOutsideData),
		errors.Is(err, snap.ErrNegativeTolerance):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoCatalog):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		s.opts.Logger.Error("operation failed", zap.Error(err))
	}
	var body errorBody
	body.Error.Code = code
	body.Error.Message = err.Error()
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
