package extractor

import (
	"time"

	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/logger"
)

// Proximity defaults, in bytes of visible text
const (
	DefaultProximityWindow = 300
	DefaultMaxDistance     = 200
)

// Proximity pairs code-like tokens with the nearest festival name found in the
// surrounding text. It never parses the document structure.
type Proximity struct {
	// Window is how far around a code names and offers are searched for
	Window int
	// MaxDistance is the largest gap allowed between a name and its code
	MaxDistance int

	now func() time.Time
	log *logger.Logger
}

// NewProximity creates a regex-only strategy with default distances
func NewProximity() *Proximity {
	return &Proximity{
		Window:      DefaultProximityWindow,
		MaxDistance: DefaultMaxDistance,
		now:         time.Now,
		log:         logger.ForExtractor().WithField("strategy", "proximity"),
	}
}

// Name returns the strategy name
func (p *Proximity) Name() string {
	return "proximity"
}

// Extract scans the document text for codes and pairs each with a name
func (p *Proximity) Extract(html string) []discount.Record {
	text := visibleText(html)
	scrapedAt := p.now()

	var records []discount.Record
	for _, loc := range codePattern.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		if !isCandidateCode(code) {
			continue
		}

		start, end := window(text, loc[0], loc[1], p.Window)
		name := p.nearestName(text, start, end, loc[0], loc[1])
		if name == "" {
			continue
		}

		offer := p.nearestOffer(text, start, end, loc[0], loc[1])
		if offer == "" {
			offer = discount.DefaultOffer
		}

		records = append(records, discount.Record{
			FestivalName: name,
			Code:         code,
			Offer:        offer,
			Source:       discount.SourceScraped,
			ScrapedAt:    scrapedAt,
		})
	}

	cleaned := discount.Clean(records)
	p.log.Debug().Int("records", len(cleaned)).Msg("Proximity extraction finished")
	return cleaned
}

// nearestName returns the festival phrase in text[start:end] closest to the
// code span, or "" when none lies within MaxDistance
func (p *Proximity) nearestName(text string, start, end, codeStart, codeEnd int) string {
	best, bestDistance := "", -1
	for _, loc := range festivalNamePattern.FindAllStringIndex(text[start:end], -1) {
		nameStart, nameEnd := start+loc[0], start+loc[1]
		d := distance(nameStart, nameEnd, codeStart, codeEnd)
		if d < 0 || d > p.MaxDistance {
			continue
		}
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = text[nameStart:nameEnd], d
		}
	}
	return normalizeSpace(best)
}

// nearestOffer returns the offer phrase in text[start:end] closest to the code
func (p *Proximity) nearestOffer(text string, start, end, codeStart, codeEnd int) string {
	best, bestDistance := "", -1
	for _, loc := range offerPattern.FindAllStringIndex(text[start:end], -1) {
		offerStart, offerEnd := start+loc[0], start+loc[1]
		d := distance(offerStart, offerEnd, codeStart, codeEnd)
		if d < 0 {
			continue
		}
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = text[offerStart:offerEnd], d
		}
	}
	return normalizeSpace(best)
}
