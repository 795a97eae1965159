package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parcelworks/dealfilter/internal/cache"
	"github.com/parcelworks/dealfilter/internal/dispatch"
	"github.com/parcelworks/dealfilter/internal/domain"
	"github.com/parcelworks/dealfilter/internal/domain/property"
	"github.com/parcelworks/dealfilter/internal/engine"
)

// memSource is an in-memory property source for handler tests.
type memSource struct {
	mu      sync.Mutex
	recs    map[string]*property.Record
	failing bool
}

func newMemSource(recs ...*property.Record) *memSource {
	m := &memSource{recs: make(map[string]*property.Record)}
	for _, r := range recs {
		m.recs[r.ID] = r
	}
	return m
}

func (m *memSource) Get(_ context.Context, id string) (*property.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, fmt.Errorf("get %s: %w", id, domain.ErrSourceUnavailable)
	}
	rec, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

func (m *memSource) List(_ context.Context, offset, limit int) ([]*property.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, fmt.Errorf("list: %w", domain.ErrSourceUnavailable)
	}
	ids := make([]string, 0, len(m.recs))
	for id := range m.recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if offset > len(ids) {
		offset = len(ids)
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]*property.Record, len(ids))
	for i, id := range ids {
		out[i] = m.recs[id]
	}
	return out, nil
}

func (m *memSource) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return 0, fmt.Errorf("count: %w", domain.ErrSourceUnavailable)
	}
	return len(m.recs), nil
}

func (m *memSource) Put(_ context.Context, rec *property.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.ID] = rec
	return nil
}

func (m *memSource) PutMany(ctx context.Context, recs []*property.Record) error {
	for _, r := range recs {
		if err := m.Put(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *memSource) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, id)
	return nil
}

func (m *memSource) Close() error { return nil }

type testAPI struct {
	srv     *httptest.Server
	source  *memSource
	results *cache.ResultCache
}

func newTestAPI(t *testing.T, recs ...*property.Record) *testAPI {
	t.Helper()
	source := newMemSource(recs...)
	results := cache.New(5*time.Minute, 1000)
	dispatcher := dispatch.New(results, zap.NewNop())
	searcher := engine.NewSearcher(dispatcher, zap.NewNop(), 2)
	server := NewServer(source, searcher, results, zap.NewNop())

	r := chi.NewRouter()
	server.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, source: source, results: results}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out.Bytes()
}

func decode(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func absenteeRecord(id string) *property.Record {
	return &property.Record{
		ID:           id,
		Address:      "12 Oak St",
		City:         "Columbus",
		State:        "OH",
		MailingState: "FL",
		MailingCity:  "Tampa",
	}
}

func occupiedRecord(id string) *property.Record {
	return &property.Record{
		ID:             id,
		Address:        "14 Oak St",
		City:           "Columbus",
		State:          "OH",
		MailingAddress: "14 Oak St",
		MailingCity:    "Columbus",
		MailingState:   "OH",
	}
}

func TestSearch_HappyPath(t *testing.T) {
	api := newTestAPI(t, absenteeRecord("abs-1"), occupiedRecord("occ-1"))

	resp, body := api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters": []map[string]any{{"id": "absentee-owner"}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var out struct {
		Results []struct {
			Result struct {
				Property      *property.Record `json:"property"`
				CombinedScore float64          `json:"combinedScore"`
			} `json:"result"`
			Rank int `json:"rank"`
		} `json:"results"`
		Total          int      `json:"total"`
		AppliedFilters []string `json:"appliedFilters"`
	}
	decode(t, body, &out)

	if out.Total != 1 {
		t.Fatalf("Total = %d, want 1; body %s", out.Total, body)
	}
	if out.Results[0].Result.Property.ID != "abs-1" {
		t.Errorf("matched property = %s, want abs-1", out.Results[0].Result.Property.ID)
	}
	if out.Results[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", out.Results[0].Rank)
	}
	if len(out.AppliedFilters) != 1 || out.AppliedFilters[0] != "absentee-owner" {
		t.Errorf("appliedFilters = %v", out.AppliedFilters)
	}
}

func TestSearch_ScopedToPropertyIDs(t *testing.T) {
	api := newTestAPI(t, absenteeRecord("abs-1"), absenteeRecord("abs-2"))

	resp, body := api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters":     []map[string]any{{"id": "absentee-owner"}},
		"propertyIds": []string{"abs-2"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var out struct {
		Total int `json:"total"`
		Results []struct {
			Result struct {
				Property *property.Record `json:"property"`
			} `json:"result"`
		} `json:"results"`
	}
	decode(t, body, &out)
	if out.Total != 1 || out.Results[0].Result.Property.ID != "abs-2" {
		t.Errorf("scoped search returned %s", body)
	}
}

func TestSearch_UnknownPropertyID(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters":     []map[string]any{{"id": "absentee-owner"}},
		"propertyIds": []string{"missing"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", resp.StatusCode, body)
	}
	var errResp ErrorResponse
	decode(t, body, &errResp)
	if errResp.Code != codeNotFound {
		t.Errorf("code = %s, want %s", errResp.Code, codeNotFound)
	}
}

func TestSearch_ValidationFailure(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters": []map[string]any{{"id": "no-such-filter"}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", resp.StatusCode, body)
	}

	var out struct {
		Code   string   `json:"code"`
		Errors []string `json:"errors"`
	}
	decode(t, body, &out)
	if out.Code != codeValidationFailed {
		t.Errorf("code = %s, want %s", out.Code, codeValidationFailed)
	}
	if len(out.Errors) == 0 {
		t.Error("expected per-filter errors in the response")
	}
}

func TestSearch_EmptyFilters(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters": []map[string]any{},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", resp.StatusCode, body)
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	req, _ := http.NewRequest(http.MethodPost, api.srv.URL+"/api/v1/search",
		bytes.NewBufferString("{not json"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListFilters(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodGet, "/api/v1/filters", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out struct {
		Filters []FilterInfo `json:"filters"`
		Total   int          `json:"total"`
	}
	decode(t, body, &out)
	if out.Total != 44 || len(out.Filters) != 44 {
		t.Errorf("total = %d (%d items), want 44", out.Total, len(out.Filters))
	}
}

func TestListFilters_ByCategory(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodGet, "/api/v1/filters?category=standard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Filters []FilterInfo `json:"filters"`
		Total   int          `json:"total"`
	}
	decode(t, body, &out)
	if out.Total != 6 {
		t.Errorf("standard total = %d, want 6", out.Total)
	}
	for _, f := range out.Filters {
		if f.Category != "standard" {
			t.Errorf("filter %s has category %s", f.ID, f.Category)
		}
	}
}

func TestListFilters_UnknownCategory(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.do(t, http.MethodGet, "/api/v1/filters?category=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetFilter(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodGet, "/api/v1/filters/high-equity", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var info FilterInfo
	decode(t, body, &info)
	if info.ID != "high-equity" || info.Name == "" {
		t.Errorf("info = %+v", info)
	}
	if len(info.Params) == 0 {
		t.Error("expected declared params for high-equity")
	}
}

func TestGetFilter_NotFound(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.do(t, http.MethodGet, "/api/v1/filters/retired-filter", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestValidateFilters(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/v1/filters/validate", map[string]any{
		"filters": []map[string]any{
			{"id": "high-equity", "params": map[string]any{"minEquityPercent": 55}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out ValidateResponse
	decode(t, body, &out)
	if !out.Valid || len(out.Errors) != 0 {
		t.Errorf("out = %+v, want valid", out)
	}

	_, body = api.do(t, http.MethodPost, "/api/v1/filters/validate", map[string]any{
		"filters": []map[string]any{
			{"id": "high-equity", "params": map[string]any{"minEquityPercent": "lots"}},
		},
	})
	decode(t, body, &out)
	if out.Valid || len(out.Errors) == 0 {
		t.Errorf("out = %+v, want invalid with errors", out)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	api := newTestAPI(t, absenteeRecord("abs-1"))

	// Populate the cache through a search.
	api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters": []map[string]any{{"id": "absentee-owner"}},
	})

	resp, body := api.do(t, http.MethodGet, "/api/v1/cache/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var stats cache.Stats
	decode(t, body, &stats)
	if stats.Size == 0 || stats.Misses == 0 {
		t.Errorf("stats = %+v, want populated cache", stats)
	}

	resp, _ = api.do(t, http.MethodDelete, "/api/v1/cache", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", resp.StatusCode)
	}
	if api.results.Stats().Size != 0 {
		t.Errorf("cache size = %d after clear", api.results.Stats().Size)
	}
}

func TestClearCache_ByProperty(t *testing.T) {
	api := newTestAPI(t, absenteeRecord("abs-1"), absenteeRecord("abs-2"))

	api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters": []map[string]any{{"id": "absentee-owner"}},
	})

	resp, body := api.do(t, http.MethodDelete, "/api/v1/cache?propertyId=abs-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]int
	decode(t, body, &out)
	if out["removed"] != 1 {
		t.Errorf("removed = %d, want 1", out["removed"])
	}
}

func TestPropertyCRUD(t *testing.T) {
	api := newTestAPI(t)

	rec := absenteeRecord("prop-1")
	resp, body := api.do(t, http.MethodPut, "/api/v1/properties/prop-1", rec)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, body %s", resp.StatusCode, body)
	}

	resp, body = api.do(t, http.MethodGet, "/api/v1/properties/prop-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var got property.Record
	decode(t, body, &got)
	if got.ID != "prop-1" || got.MailingState != "FL" {
		t.Errorf("round trip = %+v", got)
	}

	resp, _ = api.do(t, http.MethodDelete, "/api/v1/properties/prop-1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, _ = api.do(t, http.MethodGet, "/api/v1/properties/prop-1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}

	// Deleting again is not an error.
	resp, _ = api.do(t, http.MethodDelete, "/api/v1/properties/prop-1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("second delete = %d, want 204", resp.StatusCode)
	}
}

func TestUpsertProperty_IDMismatch(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPut, "/api/v1/properties/prop-1", absenteeRecord("other"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", resp.StatusCode, body)
	}
}

func TestUpsertProperty_InvalidatesCachedResults(t *testing.T) {
	api := newTestAPI(t, absenteeRecord("abs-1"))

	api.do(t, http.MethodPost, "/api/v1/search", map[string]any{
		"filters": []map[string]any{{"id": "absentee-owner"}},
	})
	if api.results.Stats().Size == 0 {
		t.Fatal("expected cached results after search")
	}

	api.do(t, http.MethodPut, "/api/v1/properties/abs-1", occupiedRecord("abs-1"))
	if api.results.Stats().Size != 0 {
		t.Errorf("cache size = %d after upsert, want 0", api.results.Stats().Size)
	}
}

func TestListProperties(t *testing.T) {
	api := newTestAPI(t,
		absenteeRecord("p1"), absenteeRecord("p2"), absenteeRecord("p3"))

	resp, body := api.do(t, http.MethodGet, "/api/v1/properties?offset=1&limit=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out struct {
		Properties []*property.Record `json:"properties"`
		Total      int                `json:"total"`
		Offset     int                `json:"offset"`
		Limit      int                `json:"limit"`
	}
	decode(t, body, &out)
	if out.Total != 3 {
		t.Errorf("total = %d, want 3", out.Total)
	}
	if len(out.Properties) != 1 || out.Properties[0].ID != "p2" {
		t.Errorf("page = %v, want just p2", out.Properties)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]string
	decode(t, body, &out)
	if out["status"] != "ok" || out["version"] == "" {
		t.Errorf("health = %v", out)
	}

	api.source.mu.Lock()
	api.source.failing = true
	api.source.mu.Unlock()

	resp, body = api.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d, want 503", resp.StatusCode)
	}
	decode(t, body, &out)
	if out["status"] != "degraded" {
		t.Errorf("status = %s, want degraded", out["status"])
	}
}
