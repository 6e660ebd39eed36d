package query

import (
	"strings"

	"sjsage522/filmwaiver/helpers"
	"sjsage522/filmwaiver/internal/discount"
)

// DefaultPageSize is used when a non-positive page size is requested
const DefaultPageSize = 10

// Page is one zero-based page of records
type Page struct {
	Items   []discount.Record
	Page    int
	Size    int
	Total   int
	HasMore bool
}

// Search returns the records whose festival name, offer or code contain q,
// case-insensitively. An empty query matches everything. Order is preserved.
func Search(records []discount.Record, q string) []discount.Record {
	q = strings.ToLower(q)
	matched := make([]discount.Record, 0, len(records))
	for _, r := range records {
		if q == "" || strings.Contains(r.SearchText(), q) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Paginate slices records into the requested page. Pages past the end are
// empty, negative pages are treated as the first one.
func Paginate(records []discount.Record, page, size int) Page {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	p := Page{Items: []discount.Record{}, Page: page, Size: size, Total: len(records)}

	// page*size may overflow, compare against the page count instead
	pages := len(records) / size
	if len(records)%size != 0 {
		pages++
	}
	if page >= pages {
		return p
	}
	start := page * size
	end := min(start+size, len(records))

	p.Items = records[start:end]
	p.HasMore = end < len(records)
	return p
}

// FestivalID derives the identifier of a festival page URL: its last path
// segment with everything but letters and digits removed, lowercased
func FestivalID(rawURL string) string {
	return helpers.Slug(helpers.LastPathSegment(rawURL))
}

// Lookup returns the records matching any of urls. A record matches a URL
// when its own festival id contains or is contained in the URL's id, or when
// its normalised name contains the URL's id. Each record appears once, in
// the order of records.
func Lookup(records []discount.Record, urls []string) []discount.Record {
	ids := make([]string, 0, len(urls))
	for _, u := range urls {
		if id := FestivalID(u); id != "" {
			ids = append(ids, id)
		}
	}

	matched := make([]discount.Record, 0)
	for _, r := range records {
		recordID := FestivalID(r.URL)
		name := helpers.Slug(r.FestivalName)
		for _, id := range ids {
			if matches(recordID, name, id) {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}

func matches(recordID, name, id string) bool {
	if recordID != "" && (strings.Contains(recordID, id) || strings.Contains(id, recordID)) {
		return true
	}
	return strings.Contains(name, id)
}
