package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"sjsage522/filmwaiver/internal/discount"
)

// Strategy turns an HTML document into discount records. Implementations
// never fail: an empty or unparsable document yields an empty slice.
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string

	// Extract returns the validated, code-deduplicated records found in html
	Extract(html string) []discount.Record
}

// ElementHandler extracts one field from a candidate container. An empty
// result means the handler found nothing and the next one should be tried.
type ElementHandler func(*goquery.Selection) string

// applyHandlers returns the first non-empty handler result
func applyHandlers(s *goquery.Selection, handlers []ElementHandler) string {
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if result := handler(s); result != "" {
			return result
		}
	}
	return ""
}
