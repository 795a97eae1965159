// Package chi exposes the filter engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parcelworks/dealfilter/internal/cache"
	"github.com/parcelworks/dealfilter/internal/domain"
	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
	"github.com/parcelworks/dealfilter/internal/domain/search"
	"github.com/parcelworks/dealfilter/internal/registry"
	propertyrepo "github.com/parcelworks/dealfilter/internal/repository/property"
	"github.com/parcelworks/dealfilter/internal/version"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeSourceError      = "source_unavailable"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchExecutor runs a search request against a property set.
type SearchExecutor interface {
	Execute(ctx context.Context, properties []*property.Record, req *search.Request) (*search.Response, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	source        propertyrepo.Source
	searcher      SearchExecutor
	results       *cache.ResultCache
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	source propertyrepo.Source,
	searcher SearchExecutor,
	results *cache.ResultCache,
	logger *zap.Logger,
) *Server {
	s := &Server{
		source:   source,
		searcher: searcher,
		results:  results,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilterConfig, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusServiceUnavailable, codeSourceError),
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)

		r.Get("/filters", s.ListFilters)
		r.Get("/filters/{id}", s.GetFilter)
		r.Post("/filters/validate", s.ValidateFilters)

		r.Get("/cache/stats", s.CacheStats)
		r.Delete("/cache", s.ClearCache)

		r.Get("/properties", s.ListProperties)
		r.Get("/properties/{id}", s.GetProperty)
		r.Put("/properties/{id}", s.UpsertProperty)
		r.Delete("/properties/{id}", s.DeleteProperty)
	})
}

// SearchRequest is the POST /api/v1/search body.
type SearchRequest struct {
	Filters       []ActiveFilter `json:"filters"`
	Mode          string         `json:"mode,omitempty"`
	MinMatchCount int            `json:"minMatchCount,omitempty"`
	MinScore      float64        `json:"minScore,omitempty"`
	Offset        int            `json:"offset,omitempty"`
	Limit         int            `json:"limit,omitempty"`
	UseCache      *bool          `json:"useCache,omitempty"`
	PropertyIDs   []string       `json:"propertyIds,omitempty"`
}

// ActiveFilter is one enabled filter in a search request.
type ActiveFilter struct {
	ID     string         `json:"id"`
	Params map[string]any `json:"params,omitempty"`
	Weight float64        `json:"weight,omitempty"`
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	active := activeFromRequest(body.Filters)
	if issues := registry.ValidateActive(active); len(issues) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    codeValidationFailed,
			"message": "filter validation failed",
			"errors":  issues,
		})
		return
	}

	req, err := search.New(
		active, filter.Mode(body.Mode),
		body.MinMatchCount, body.MinScore,
		body.Offset, body.Limit,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if body.UseCache != nil && !*body.UseCache {
		req = req.WithoutCache()
	}

	properties, err := s.loadProperties(r, body.PropertyIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.searcher.Execute(r.Context(), properties, &req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return // client went away
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) loadProperties(r *http.Request, ids []string) ([]*property.Record, error) {
	if len(ids) == 0 {
		return s.source.List(r.Context(), 0, 0)
	}
	out := make([]*property.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.source.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// FilterInfo describes one registered filter for API consumers.
type FilterInfo struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Category       string           `json:"category"`
	DefaultEnabled bool             `json:"defaultEnabled"`
	Params         []registry.Param `json:"params,omitempty"`
}

// ListFilters handles GET /api/v1/filters. An optional ?category= query
// narrows the listing to one category.
func (s *Server) ListFilters(w http.ResponseWriter, r *http.Request) {
	var cfgs []registry.Config
	if cat := r.URL.Query().Get("category"); cat != "" {
		if !validCategory(registry.Category(cat)) {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "Unknown category: "+cat)
			return
		}
		cfgs = registry.ByCategory(registry.Category(cat))
	} else {
		cfgs = registry.All()
	}

	items := make([]FilterInfo, len(cfgs))
	for i, cfg := range cfgs {
		items[i] = filterInfoFromConfig(cfg)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filters": items,
		"total":   len(items),
	})
}

// GetFilter handles GET /api/v1/filters/{id}.
func (s *Server) GetFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cfg, ok := registry.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "No filter registered with id "+id)
		return
	}
	writeJSON(w, http.StatusOK, filterInfoFromConfig(cfg))
}

// ValidateRequest is the POST /api/v1/filters/validate body.
type ValidateRequest struct {
	Filters []ActiveFilter `json:"filters"`
}

// ValidateResponse reports filter configuration problems.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateFilters handles POST /api/v1/filters/validate.
func (s *Server) ValidateFilters(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	issues := registry.ValidateActive(activeFromRequest(body.Filters))
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:  len(issues) == 0,
		Errors: issues,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.results.Stats())
}

// ClearCache handles DELETE /api/v1/cache. Optional ?propertyId= or
// ?filterId= queries invalidate a subset instead of the whole cache.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("propertyId") != "":
		removed := s.results.InvalidateProperty(q.Get("propertyId"))
		writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	case q.Get("filterId") != "":
		removed := s.results.InvalidateFilter(q.Get("filterId"))
		writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	default:
		s.results.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListProperties handles GET /api/v1/properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", search.DefaultLimit)
	if limit > search.MaxLimit {
		limit = search.MaxLimit
	}

	recs, err := s.source.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	total, err := s.source.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if recs == nil {
		recs = []*property.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"properties": recs,
		"total":      total,
		"offset":     offset,
		"limit":      limit,
	})
}

// GetProperty handles GET /api/v1/properties/{id}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	rec, err := s.source.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpsertProperty handles PUT /api/v1/properties/{id}. Stored filter results
// for the property are invalidated.
func (s *Server) UpsertProperty(w http.ResponseWriter, r *http.Request) {
	var rec property.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if rec.ID == "" {
		rec.ID = id
	}
	if rec.ID != id {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Body id does not match URL id")
		return
	}

	if err := s.source.Put(r.Context(), &rec); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.results.InvalidateProperty(id)

	writeJSON(w, http.StatusOK, &rec)
}

// DeleteProperty handles DELETE /api/v1/properties/{id}.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.source.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.results.InvalidateProperty(id)

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := s.source.Count(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		s.logger.Warn("health check: property source unavailable", zap.Error(err))
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"version": version.Version,
	})
}

func activeFromRequest(in []ActiveFilter) []filter.Active {
	out := make([]filter.Active, len(in))
	for i, f := range in {
		out[i] = filter.Active{
			FilterID: f.ID,
			Params:   filter.Params(f.Params),
			Weight:   f.Weight,
		}
	}
	return out
}

func filterInfoFromConfig(cfg registry.Config) FilterInfo {
	return FilterInfo{
		ID:             cfg.ID,
		Name:           cfg.Name,
		Description:    cfg.Description,
		Category:       string(cfg.Category),
		DefaultEnabled: cfg.DefaultEnabled,
		Params:         cfg.Params,
	}
}

func validCategory(cat registry.Category) bool {
	for _, c := range registry.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrInvalidFilterConfig,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
