package extractor

import (
	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/logger"
)

// DefaultMinRecords is the record count under which the backfill runs
const DefaultMinRecords = 3

// Chain tries its strategies in order and keeps the output of the first one
// that finds anything. When that leaves fewer than MinRecords records the
// backfill is consulted.
type Chain struct {
	Strategies []Strategy
	Backfill   *Backfill
	MinRecords int

	log *logger.Logger
}

// NewChain creates the default chain: structural, then proximity, then backfill
func NewChain(baseURL string, minRecords int) *Chain {
	return &Chain{
		Strategies: []Strategy{NewStructural(baseURL), NewProximity()},
		Backfill:   NewBackfill(),
		MinRecords: minRecords,
		log:        logger.ForExtractor(),
	}
}

// Name returns the strategy name
func (c *Chain) Name() string {
	return "chain"
}

// Extract runs the chain over html
func (c *Chain) Extract(html string) []discount.Record {
	records := []discount.Record{}
	for _, strategy := range c.Strategies {
		records = strategy.Extract(html)
		if len(records) > 0 {
			c.log.Debug().
				Str("strategy", strategy.Name()).
				Int("records", len(records)).
				Msg("Strategy produced records")
			break
		}
	}

	if c.Backfill != nil && len(records) < c.MinRecords {
		records = append(records, c.Backfill.Scan(html, records)...)
	}

	return discount.Clean(records)
}
