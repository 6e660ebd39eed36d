package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/filmwaiver/helpers"
	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/logger"
)

var (
	// DefaultCardSelectors are tried in order, the first one matching anything wins
	DefaultCardSelectors = []string{
		".festival-card",
		".discount-card",
		".card",
		".festival-item",
		".discount-item",
		"[data-festival-id]",
		".list-group-item",
		".row .col-md-4",
		".row .col-lg-4",
		".row .col-sm-6",
		".grid-item",
	}

	nameSelectors  = []string{"h1", "h2", "h3", "h4", "h5", "h6", ".title", ".name", ".festival-name", ".festival-title"}
	codeSelectors  = []string{".code", ".discount-code", ".coupon-code", ".promo-code", ".badge", ".tag"}
	offerSelectors = []string{".offer", ".discount", ".deal", ".description", ".savings", ".percent", "p"}

	siteSuffixPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*-\s*FilmFreeway.*$`),
		regexp.MustCompile(`(?i)\s*\|\s*FilmFreeway.*$`),
	}
)

const maxFallbackContainerText = 1000

// Structural extracts records from card-like containers with CSS selectors
type Structural struct {
	BaseURL       string
	CardSelectors []string

	now func() time.Time
	log *logger.Logger
}

// NewStructural creates a selector based strategy resolving links against baseURL
func NewStructural(baseURL string) *Structural {
	return &Structural{
		BaseURL:       baseURL,
		CardSelectors: DefaultCardSelectors,
		now:           time.Now,
		log:           logger.ForExtractor().WithField("strategy", "structural"),
	}
}

// Name returns the strategy name
func (e *Structural) Name() string {
	return "structural"
}

// Extract parses html and extracts one record per candidate container
func (e *Structural) Extract(html string) []discount.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.log.Debug().Err(err).Msg("Unparsable document")
		return []discount.Record{}
	}

	cards := e.findCards(doc)
	scrapedAt := e.now()

	records := make([]discount.Record, 0, cards.Length())
	cards.Each(func(i int, s *goquery.Selection) {
		if record, ok := e.extractRecord(s, scrapedAt); ok {
			records = append(records, record)
		}
	})

	cleaned := discount.Clean(records)
	e.log.Debug().
		Int("containers", cards.Length()).
		Int("records", len(cleaned)).
		Msg("Structural extraction finished")
	return cleaned
}

// findCards returns the elements of the first card selector that matches, or
// failing that every generic container whose text holds something code-like
func (e *Structural) findCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range e.CardSelectors {
		elements := doc.Find(selector)
		if elements.Length() > 0 {
			e.log.Debug().
				Str("selector", selector).
				Int("count", elements.Length()).
				Msg("Card selector matched")
			return elements
		}
	}

	e.log.Debug().Msg("No card selector matched, scanning containers for code patterns")
	return doc.Find("div, section, article, li").FilterFunction(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		return text != "" && len(text) < maxFallbackContainerText && codePattern.MatchString(text)
	})
}

// extractRecord builds a record from a container, ok is false when the
// container lacks a usable name or code
func (e *Structural) extractRecord(s *goquery.Selection, scrapedAt time.Time) (discount.Record, bool) {
	name := applyHandlers(s, []ElementHandler{
		selectorText(nameSelectors, cleanFestivalName),
		festivalLine,
	})
	code := applyHandlers(s, []ElementHandler{
		selectorText(codeSelectors, nil),
		codeFromText,
	})

	record := discount.Record{
		FestivalName: name,
		Code:         code,
		Source:       discount.SourceScraped,
		ScrapedAt:    scrapedAt,
	}
	if !record.Valid() {
		return discount.Record{}, false
	}

	record.Offer = applyHandlers(s, []ElementHandler{
		offerFromSelectors(name, code),
		offerFromText,
	})
	if record.Offer == "" {
		record.Offer = discount.DefaultOffer
	}

	record.URL = applyHandlers(s, []ElementHandler{
		selfLink(e.BaseURL),
		firstLink(e.BaseURL),
	})

	return record, true
}

// selectorText returns the text of the first selector with non-empty text,
// passed through clean when given
func selectorText(selectors []string, clean func(string) string) ElementHandler {
	return func(s *goquery.Selection) string {
		for _, selector := range selectors {
			text := normalizeSpace(s.Find(selector).First().Text())
			if text == "" {
				continue
			}
			if clean != nil {
				text = clean(text)
			}
			return text
		}
		return ""
	}
}

// cleanFestivalName strips the site name appended to page titles
func cleanFestivalName(name string) string {
	for _, pattern := range siteSuffixPatterns {
		name = pattern.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// festivalLine picks the first text line that reads like a festival name
func festivalLine(s *goquery.Selection) string {
	for _, line := range strings.Split(s.Text(), "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 10 || len(line) >= 150 {
			continue
		}
		if keywordPattern.MatchString(line) {
			return line
		}
	}
	return ""
}

func codeFromText(s *goquery.Selection) string {
	return firstCode(s.Text())
}

// offerFromSelectors keeps the last offer-like text differing from name and
// code, stopping early once one is longer than five characters
func offerFromSelectors(name, code string) ElementHandler {
	return func(s *goquery.Selection) string {
		offer := ""
		for _, selector := range offerSelectors {
			text := normalizeSpace(s.Find(selector).First().Text())
			if text == "" || text == name || text == code {
				continue
			}
			offer = text
			if len(offer) > 5 {
				break
			}
		}
		return offer
	}
}

func offerFromText(s *goquery.Selection) string {
	return normalizeSpace(offerPattern.FindString(s.Text()))
}

// selfLink handles containers that are anchors themselves
func selfLink(baseURL string) ElementHandler {
	return func(s *goquery.Selection) string {
		if goquery.NodeName(s) != "a" {
			return ""
		}
		href, _ := s.Attr("href")
		return linkURL(baseURL, href)
	}
}

func firstLink(baseURL string) ElementHandler {
	return func(s *goquery.Selection) string {
		href, _ := s.Find("a[href]").First().Attr("href")
		return linkURL(baseURL, href)
	}
}

func linkURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return ""
	}
	return helpers.ResolveURL(baseURL, href)
}
