package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/internal/query"
	"sjsage522/filmwaiver/internal/store"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/pkg/errors"
)

const maxLookupBody = 1 << 20

// --- Request DTOs ---

type lookupRequest struct {
	URLs     []string `json:"urls"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// Handler serves the discount endpoints
type Handler struct {
	snapshots Snapshots
	pageSize  int
	now       func() time.Time
	log       *logger.Logger
}

// NewHandler creates a handler paginating with pageSize by default
func NewHandler(snapshots Snapshots, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &Handler{
		snapshots: snapshots,
		pageSize:  pageSize,
		now:       time.Now,
		log:       logger.ForServer(),
	}
}

// Health reports liveness and the state of the snapshot
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Timestamp:   h.now().UTC(),
		RecordCount: h.snapshots.Len(),
	}
	if age, ok := h.snapshots.Age(); ok {
		seconds := age.Seconds()
		resp.CacheAgeSeconds = &seconds
		resp.CacheSize = 1
	}
	writeJSON(w, http.StatusOK, resp)
}

// List returns every record, optionally paginated
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, size, paginate, err := h.pageParams(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	resp := listResponse{
		Success:        true,
		Discounts:      nonNil(res.records),
		Source:         res.origin,
		Timestamp:      h.now().UTC(),
		TotalAvailable: len(res.records),
		Error:          res.errMsg,
	}
	if paginate {
		p := query.Paginate(res.records, page, size)
		resp.Discounts = p.Items
		resp.pagination = paged(p.Page, p.Size, p.HasMore)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search filters records by the q parameter, optionally paginated
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	page, size, paginate, err := h.pageParams(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	q := r.URL.Query().Get("q")
	matched := query.Search(res.records, q)

	resp := searchResponse{
		Success:        true,
		Discounts:      matched,
		Query:          q,
		TotalAvailable: len(res.records),
		Count:          len(matched),
		Error:          res.errMsg,
	}
	if paginate {
		p := query.Paginate(matched, page, size)
		resp.Discounts = p.Items
		resp.pagination = paged(p.Page, p.Size, p.HasMore)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Lookup returns the records matching the festival pages in the body
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLookupBody))
	if err := dec.Decode(&req); err != nil {
		h.badRequest(w, r, errors.NewValidation("lookup", fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	if len(req.URLs) == 0 {
		h.badRequest(w, r, errors.NewValidation("lookup", "urls must be a non-empty array"))
		return
	}
	if req.PageSize <= 0 {
		req.PageSize = h.pageSize
	}

	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	p := query.Paginate(query.Lookup(res.records, req.URLs), req.Page, req.PageSize)
	writeJSON(w, http.StatusOK, lookupResponse{
		Success:   true,
		Discounts: p.Items,
		Total:     p.Total,
		Page:      p.Page,
		PageSize:  p.Size,
		HasMore:   p.HasMore,
		Error:     res.errMsg,
	})
}

// snapshotView is a store read ready for an envelope
type snapshotView struct {
	records []discount.Record
	origin  string
	errMsg  string
}

// snapshot reads the store. A failed refresh with stale records still
// serves them, a failed refresh with nothing cached writes a 500 and ok is
// false.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (snapshotView, bool) {
	res, err := h.snapshots.Get(r.Context())
	if err == nil {
		return snapshotView{records: res.Records, origin: res.Origin}, true
	}

	log := h.log.Warn().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("error_type", errorType(err)).
		Err(err)

	if len(res.Records) == 0 {
		log.Msg("No records available")
		writeError(w, http.StatusInternalServerError, err.Error())
		return snapshotView{}, false
	}

	log.Int("records", len(res.Records)).Msg("Serving stale records")
	return snapshotView{records: res.Records, origin: store.OriginStale, errMsg: err.Error()}, true
}

// pageParams reads the optional page and page_size query parameters
func (h *Handler) pageParams(r *http.Request) (page, size int, ok bool, err error) {
	values := r.URL.Query()
	size = h.pageSize

	if raw := values.Get("page_size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			return 0, 0, false, errors.NewValidation("page_size", fmt.Sprintf("invalid page_size %q", raw))
		}
	}

	raw := values.Get("page")
	if raw == "" {
		return 0, size, false, nil
	}
	if page, err = strconv.Atoi(raw); err != nil {
		return 0, 0, false, errors.NewValidation("page", fmt.Sprintf("invalid page %q", raw))
	}
	return page, size, true, nil
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Debug().
		Str("request_id", middleware.GetReqID(r.Context())).
		Err(err).
		Msg("Rejected request")
	writeError(w, http.StatusBadRequest, err.Error())
}

func errorType(err error) string {
	if t := errors.TypeOf(err); t != "" {
		return string(t)
	}
	return "unknown"
}
