package discount

import (
	"strings"
	"time"
)

// Provenance tags for Record.Source
const (
	SourceStatic  = "static"
	SourceScraped = "filmfreeway_realtime"
)

// DefaultOffer is used when no offer text could be extracted
const DefaultOffer = "Discount available"

// Record is a single festival submission discount
type Record struct {
	FestivalName string    `json:"festival_name"`
	Code         string    `json:"code"`
	Offer        string    `json:"offer"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// Valid reports whether the record carries a usable name and code
func (r Record) Valid() bool {
	return len(r.FestivalName) > 2 && len(r.Code) >= 3
}

// SearchText is the lowercase text free-text queries are matched against
func (r Record) SearchText() string {
	return strings.ToLower(r.FestivalName + " " + r.Offer + " " + r.Code)
}

// Clean drops invalid records and keeps the first record for every code.
// The input is not modified.
func Clean(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	cleaned := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		if _, dup := seen[r.Code]; dup {
			continue
		}
		seen[r.Code] = struct{}{}
		cleaned = append(cleaned, r)
	}
	return cleaned
}
