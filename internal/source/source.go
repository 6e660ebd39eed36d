package source

import (
	"context"
	"errors"
	"time"

	"sjsage522/filmwaiver/internal/discount"
)

// Origin tags describing where a freshly loaded snapshot came from
const (
	OriginLive   = "live_scrape"
	OriginStatic = "static"
)

// ErrNoRecords is wrapped by load errors for a page that parsed but held no
// discounts
var ErrNoRecords = errors.New("no records")

// Source loads a complete set of discount records
type Source interface {
	// Origin returns the tag reported to clients for fresh loads
	Origin() string

	// Load fetches and extracts the current records
	Load(ctx context.Context) ([]discount.Record, error)
}

// Static serves the built-in fixture records, stamped once at creation
type Static struct {
	records []discount.Record
}

// NewStatic creates a fixture backed source
func NewStatic() *Static {
	return &Static{records: discount.Fixtures(time.Now())}
}

// Origin returns OriginStatic
func (s *Static) Origin() string {
	return OriginStatic
}

// Load returns a copy of the fixtures
func (s *Static) Load(ctx context.Context) ([]discount.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]discount.Record(nil), s.records...), nil
}
