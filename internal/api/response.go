package api

import (
	"encoding/json"
	"net/http"
	"time"

	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/logger"
)

// --- Response envelopes ---

type pagination struct {
	Page     *int  `json:"page,omitempty"`
	PageSize *int  `json:"page_size,omitempty"`
	HasMore  *bool `json:"hasMore,omitempty"`
}

type listResponse struct {
	Success        bool              `json:"success"`
	Discounts      []discount.Record `json:"discounts"`
	Source         string            `json:"source"`
	Timestamp      time.Time         `json:"timestamp"`
	TotalAvailable int               `json:"total_available"`
	pagination
	Error string `json:"error,omitempty"`
}

type searchResponse struct {
	Success        bool              `json:"success"`
	Discounts      []discount.Record `json:"discounts"`
	Query          string            `json:"query"`
	TotalAvailable int               `json:"total_available"`
	Count          int               `json:"count"`
	pagination
	Error string `json:"error,omitempty"`
}

type lookupResponse struct {
	Success   bool              `json:"success"`
	Discounts []discount.Record `json:"discounts"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
	HasMore   bool              `json:"hasMore"`
	Error     string            `json:"error,omitempty"`
}

type healthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	CacheAgeSeconds *float64  `json:"cache_age_seconds"`
	RecordCount     int       `json:"record_count"`
	CacheSize       int       `json:"cache_size"`
}

type errorResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Discounts []discount.Record `json:"discounts"`
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ForServer().Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{
		Success:   false,
		Error:     msg,
		Discounts: []discount.Record{},
	})
}

func paged(page, size int, hasMore bool) pagination {
	return pagination{Page: &page, PageSize: &size, HasMore: &hasMore}
}

// nonNil keeps "discounts" an array in every envelope
func nonNil(records []discount.Record) []discount.Record {
	if records == nil {
		return []discount.Record{}
	}
	return records
}
