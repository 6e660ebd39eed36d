package extractor

import (
	"regexp"
	"time"

	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/logger"
)

// KnownFestival is a festival searched for by name when extraction comes up short
type KnownFestival struct {
	Name    string
	Pattern *regexp.Regexp
}

// KnownFestivals are the festivals the backfill looks for
var KnownFestivals = []KnownFestival{
	{"Sundance Film Festival", regexp.MustCompile(`(?i)\bsundance\b`)},
	{"SXSW Film & TV Festival", regexp.MustCompile(`(?i)\bsxsw\b|south\s+by\s+southwest`)},
	{"Tribeca Festival", regexp.MustCompile(`(?i)\btribeca\b`)},
	{"Slamdance Film Festival", regexp.MustCompile(`(?i)\bslamdance\b`)},
	{"Toronto International Film Festival", regexp.MustCompile(`(?i)\btiff\b|toronto\s+international\s+film`)},
	{"Telluride Film Festival", regexp.MustCompile(`(?i)\btelluride\b`)},
	{"Austin Film Festival", regexp.MustCompile(`(?i)\baustin\s+film\s+festival\b`)},
	{"Raindance Film Festival", regexp.MustCompile(`(?i)\braindance\b`)},
	{"Palm Springs International ShortFest", regexp.MustCompile(`(?i)\bpalm\s+springs\b`)},
	{"Hot Docs Festival", regexp.MustCompile(`(?i)\bhot\s+docs\b`)},
	{"Berlinale", regexp.MustCompile(`(?i)\bberlinale\b|berlin\s+international\s+film`)},
	{"Cannes Film Festival", regexp.MustCompile(`(?i)\bcannes\b`)},
}

// Backfill scans the page text for well-known festival names and pairs each
// hit with the first plausible code following it. It boosts recall on pages
// the other strategies cannot read, nothing more.
type Backfill struct {
	Festivals   []KnownFestival
	MaxDistance int

	now func() time.Time
	log *logger.Logger
}

// NewBackfill creates a backfill over KnownFestivals
func NewBackfill() *Backfill {
	return &Backfill{
		Festivals:   KnownFestivals,
		MaxDistance: DefaultMaxDistance,
		now:         time.Now,
		log:         logger.ForExtractor().WithField("strategy", "backfill"),
	}
}

// Scan returns records for known festivals found in html whose code is not
// already among existing
func (b *Backfill) Scan(html string, existing []discount.Record) []discount.Record {
	text := visibleText(html)
	scrapedAt := b.now()

	taken := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		taken[r.Code] = struct{}{}
	}

	var found []discount.Record
	for _, festival := range b.Festivals {
		loc := festival.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}

		_, end := window(text, loc[1], loc[1], b.MaxDistance)
		following := text[loc[1]:end]
		code := firstCode(following)
		if code == "" {
			continue
		}
		if _, dup := taken[code]; dup {
			continue
		}
		taken[code] = struct{}{}

		offer := normalizeSpace(offerPattern.FindString(following))
		if offer == "" {
			offer = discount.DefaultOffer
		}

		found = append(found, discount.Record{
			FestivalName: festival.Name,
			Code:         code,
			Offer:        offer,
			Source:       discount.SourceScraped,
			ScrapedAt:    scrapedAt,
		})
	}

	if len(found) > 0 {
		b.log.Debug().Int("records", len(found)).Msg("Backfilled known festivals")
	}
	return found
}
