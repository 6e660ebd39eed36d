package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/internal/source"
	"sjsage522/filmwaiver/internal/store"
	"sjsage522/filmwaiver/pkg/errors"
)

// MockSnapshots implements Snapshots for testing
type MockSnapshots struct {
	result store.Result
	err    error
	age    time.Duration
	hasAge bool
	panics bool
}

func (m *MockSnapshots) Get(ctx context.Context) (store.Result, error) {
	if m.panics {
		panic("boom")
	}
	return m.result, m.err
}

func (m *MockSnapshots) Age() (time.Duration, bool) { return m.age, m.hasAge }

func (m *MockSnapshots) Len() int { return len(m.result.Records) }

var fixtures = discount.Fixtures(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

func freshSnapshots() *MockSnapshots {
	return &MockSnapshots{
		result: store.Result{Records: fixtures, Origin: source.OriginStatic},
		age:    90 * time.Second,
		hasAge: true,
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	}
	return rec, payload
}

func discountCodes(t *testing.T, payload map[string]interface{}) []string {
	t.Helper()
	items, ok := payload["discounts"].([]interface{})
	require.True(t, ok, "discounts must be an array, got %v", payload["discounts"])

	codes := []string{}
	for _, item := range items {
		codes = append(codes, item.(map[string]interface{})["code"].(string))
	}
	return codes
}

func TestHealth(t *testing.T) {
	router := NewRouter(&MockSnapshots{}, 10)

	for _, path := range []string{"/health", "/api/health"} {
		rec, payload := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", payload["status"])
		assert.Nil(t, payload["cache_age_seconds"])
		assert.Equal(t, float64(0), payload["cache_size"])
		assert.Equal(t, float64(0), payload["record_count"])
		assert.NotEmpty(t, payload["timestamp"])
	}

	_, payload := do(t, NewRouter(freshSnapshots(), 10), http.MethodGet, "/health", "")
	assert.Equal(t, float64(90), payload["cache_age_seconds"])
	assert.Equal(t, float64(1), payload["cache_size"])
	assert.Equal(t, float64(10), payload["record_count"])
}

func TestListAll(t *testing.T) {
	router := NewRouter(freshSnapshots(), 10)

	for _, path := range []string{"/waivers", "/api/discounts/realtime"} {
		rec, payload := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, true, payload["success"])
		assert.Equal(t, "static", payload["source"])
		assert.Equal(t, float64(10), payload["total_available"])
		assert.Len(t, discountCodes(t, payload), 10)
		assert.NotContains(t, payload, "page")
		assert.NotContains(t, payload, "hasMore")
		assert.NotContains(t, payload, "error")
	}
}

func TestListPagination(t *testing.T) {
	router := NewRouter(freshSnapshots(), 10)

	_, payload := do(t, router, http.MethodGet, "/waivers?page=0", "")
	assert.Len(t, discountCodes(t, payload), 10)
	assert.Equal(t, false, payload["hasMore"])
	assert.Equal(t, float64(0), payload["page"])
	assert.Equal(t, float64(10), payload["page_size"])

	_, payload = do(t, router, http.MethodGet, "/waivers?page=1", "")
	assert.Empty(t, discountCodes(t, payload))
	assert.Equal(t, false, payload["hasMore"])

	_, payload = do(t, router, http.MethodGet, "/waivers?page=1&page_size=3", "")
	assert.Equal(t, []string{"SLAM10", "AFF2025", "SHORTFEST20"}, discountCodes(t, payload))
	assert.Equal(t, true, payload["hasMore"])

	rec, payload := do(t, router, http.MethodGet, "/waivers?page=9223372036854775807", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Empty(t, discountCodes(t, payload))
	assert.Equal(t, false, payload["hasMore"])

	rec, payload = do(t, router, http.MethodGet, "/waivers?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Empty(t, discountCodes(t, payload))
}

func TestSearch(t *testing.T) {
	router := NewRouter(freshSnapshots(), 10)

	for _, q := range []string{"sundance", "25%25", "SUNDANCE25"} {
		rec, payload := do(t, router, http.MethodGet, "/api/discounts/search?q="+q, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"SUNDANCE25"}, discountCodes(t, payload), q)
		assert.Equal(t, float64(1), payload["count"])
		assert.Equal(t, float64(10), payload["total_available"])
	}

	_, payload := do(t, router, http.MethodGet, "/search?q=cannes", "")
	assert.Empty(t, discountCodes(t, payload))
	assert.Equal(t, "cannes", payload["query"])
	assert.Equal(t, float64(0), payload["count"])

	_, payload = do(t, router, http.MethodGet, "/search", "")
	assert.Len(t, discountCodes(t, payload), 10)

	_, payload = do(t, router, http.MethodGet, "/search?q=film&page=1&page_size=5", "")
	assert.Equal(t, []string{"NASHFF30", "CIFF20"}, discountCodes(t, payload))
	assert.Equal(t, float64(7), payload["count"])
	assert.Equal(t, false, payload["hasMore"])
}

func TestStaleRecordsServedWithError(t *testing.T) {
	snapshots := &MockSnapshots{
		result: store.Result{Records: fixtures, Origin: store.OriginStale},
		err:    errors.NewNetwork("filmfreeway", "unexpected status code: 503", nil),
	}
	router := NewRouter(snapshots, 10)

	rec, payload := do(t, router, http.MethodGet, "/api/discounts/realtime", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stale_cache", payload["source"])
	assert.Contains(t, payload["error"], "503")
	assert.Len(t, discountCodes(t, payload), 10)

	rec, payload = do(t, router, http.MethodGet, "/search?q=tribeca", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TRIBECA15"}, discountCodes(t, payload))
	assert.Contains(t, payload["error"], "503")
}

func TestNoRecordsIsServerError(t *testing.T) {
	snapshots := &MockSnapshots{
		result: store.Result{Records: []discount.Record{}, Origin: store.OriginStale},
		err:    errors.NewNetwork("filmfreeway", "unexpected status code: 503", nil),
	}
	router := NewRouter(snapshots, 10)

	for _, path := range []string{"/waivers", "/search?q=x"} {
		rec, payload := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, payload["success"])
		assert.Contains(t, payload["error"], "503")
		assert.Empty(t, discountCodes(t, payload))
	}

	rec, _ := do(t, router, http.MethodPost, "/api/v1/lookup", `{"urls":["https://filmfreeway.com/sundancefilmfestival"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEmptySnapshotIsSuccess(t *testing.T) {
	snapshots := &MockSnapshots{
		result: store.Result{Records: []discount.Record{}, Origin: source.OriginLive},
		hasAge: true,
	}
	router := NewRouter(snapshots, 10)

	for _, path := range []string{"/waivers", "/api/discounts/realtime", "/search?q=x"} {
		rec, payload := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, true, payload["success"])
		assert.Empty(t, discountCodes(t, payload))
		assert.NotContains(t, payload, "error")
	}

	rec, payload := do(t, router, http.MethodPost, "/api/v1/lookup", `{"urls":["https://filmfreeway.com/sundancefilmfestival"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, discountCodes(t, payload))
}

func TestLookup(t *testing.T) {
	router := NewRouter(freshSnapshots(), 10)

	rec, payload := do(t, router, http.MethodPost, "/api/v1/lookup",
		`{"urls":["https://filmfreeway.com/sundancefilmfestival","https://filmfreeway.com/Tribeca"],"page":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"SUNDANCE25", "TRIBECA15"}, discountCodes(t, payload))
	assert.Equal(t, float64(2), payload["total"])
	assert.Equal(t, float64(0), payload["page"])
	assert.Equal(t, float64(10), payload["page_size"])
	assert.Equal(t, false, payload["hasMore"])

	_, payload = do(t, router, http.MethodPost, "/api/v1/lookup",
		`{"urls":["https://filmfreeway.com/sundancefilmfestival","https://filmfreeway.com/Tribeca"],"page":0,"page_size":1}`)
	assert.Equal(t, []string{"SUNDANCE25"}, discountCodes(t, payload))
	assert.Equal(t, true, payload["hasMore"])

	_, payload = do(t, router, http.MethodPost, "/api/v1/lookup", `{"urls":["https://filmfreeway.com/cannes"]}`)
	assert.Empty(t, discountCodes(t, payload))

	rec, payload = do(t, router, http.MethodPost, "/api/v1/lookup",
		`{"urls":["https://filmfreeway.com/sundancefilmfestival"],"page":4611686018427387904,"page_size":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, discountCodes(t, payload))
	assert.Equal(t, float64(1), payload["total"])
	assert.Equal(t, false, payload["hasMore"])
}

func TestLookupValidation(t *testing.T) {
	router := NewRouter(freshSnapshots(), 10)

	for _, body := range []string{`{}`, `{"urls":[]}`, `{"urls":`, `not json`} {
		rec, payload := do(t, router, http.MethodPost, "/api/v1/lookup", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, false, payload["success"])
		assert.NotEmpty(t, payload["error"])
		assert.Empty(t, discountCodes(t, payload))
	}
}

func TestCORS(t *testing.T) {
	router := NewRouter(freshSnapshots(), 10)

	rec, _ := do(t, router, http.MethodGet, "/waivers", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin, X-Requested-With, Content-Type, Accept", rec.Header().Get("Access-Control-Allow-Headers"))

	rec, _ = do(t, router, http.MethodOptions, "/api/v1/lookup", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = do(t, router, http.MethodGet, "/nowhere", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotFoundEnvelope(t *testing.T) {
	rec, payload := do(t, NewRouter(freshSnapshots(), 10), http.MethodGet, "/api/discounts/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Empty(t, discountCodes(t, payload))

	rec, payload = do(t, NewRouter(freshSnapshots(), 10), http.MethodDelete, "/waivers", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, false, payload["success"])
}

func TestPanicRecovery(t *testing.T) {
	rec, payload := do(t, NewRouter(&MockSnapshots{panics: true}, 10), http.MethodGet, "/waivers", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Empty(t, discountCodes(t, payload))
}
