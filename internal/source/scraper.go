package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"sjsage522/filmwaiver/config"
	"sjsage522/filmwaiver/helpers"
	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/internal/extractor"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/pkg/errors"
	"sjsage522/filmwaiver/services/cache"
)

// Scraper fetches the discount listing page and runs the extractor over it
type Scraper struct {
	URL       string
	Client    *http.Client
	Extractor extractor.Strategy
	Timeout   time.Duration

	// CacheSvc holds the rate limit block marker, set after the upstream
	// answered 429 and honoured for BlockTime
	CacheSvc  cache.CacheService
	BlockTime time.Duration

	Limiter *rate.Limiter
	Robots  *RobotsChecker

	log *logger.Logger
}

// NewScraper creates a scraper for cfg.SourceURL
func NewScraper(cfg *config.Config, cacheSvc cache.CacheService) *Scraper {
	if cacheSvc == nil {
		cacheSvc = cache.NewMemoryService()
	}

	s := &Scraper{
		URL:       cfg.SourceURL,
		Client:    &http.Client{Timeout: cfg.FetchTimeout},
		Extractor: extractor.NewChain(cfg.SourceBaseURL, cfg.MinRecords),
		Timeout:   cfg.FetchTimeout,
		CacheSvc:  cacheSvc,
		BlockTime: cfg.RateLimitBlock,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.FetchRate), cfg.FetchBurst),
		log:       logger.ForFetcher().WithField("url", cfg.SourceURL),
	}
	if cfg.RespectRobots {
		s.Robots = NewRobotsChecker(s.Client, cacheSvc)
	}
	return s
}

// Origin returns OriginLive
func (s *Scraper) Origin() string {
	return OriginLive
}

// Load fetches the page and extracts its records. A page yielding no records
// is reported as a parsing error.
func (s *Scraper) Load(ctx context.Context) ([]discount.Record, error) {
	body, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records := s.Extractor.Extract(string(body))
	s.log.Info().
		Str("strategy", s.Extractor.Name()).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Extraction finished")

	if len(records) == 0 {
		return nil, errors.NewParsing(s.URL, "no discounts extracted", ErrNoRecords)
	}
	return records, nil
}

// Fetch downloads the raw page, honouring the block marker, the outbound
// limiter and robots.txt when enabled
func (s *Scraper) Fetch(ctx context.Context) ([]byte, error) {
	key := s.blockKey()
	if s.CacheSvc != nil {
		if _, err := s.CacheSvc.Get(key); err == nil {
			return nil, errors.New(errors.ErrorTypeRateLimit, s.URL,
				fmt.Sprintf("blocked, not sending requests for up to %s", s.BlockTime), nil)
		}
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, errors.NewNetwork(s.URL, "rate limiter wait", err)
		}
	}

	if s.Robots != nil {
		allowed, err := s.Robots.IsAllowed(ctx, "*", s.URL)
		if err != nil {
			return nil, errors.NewValidation(s.URL, fmt.Sprintf("invalid url: %v", err))
		}
		if !allowed {
			return nil, errors.NewValidation(s.URL, "disallowed by robots.txt")
		}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := helpers.FetchWithBrowserHeaders(ctx, s.Client, s.URL)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeRateLimit) && s.CacheSvc != nil && s.BlockTime > 0 {
			blockSeconds := strconv.Itoa(int(s.BlockTime / time.Second))
			if cacheErr := s.CacheSvc.Set(key, []byte(blockSeconds), s.BlockTime); cacheErr != nil {
				s.log.Warn().Err(cacheErr).Msg("Failed to store rate limit block")
			}
			s.log.Warn().Dur("block", s.BlockTime).Msg("Upstream rate limited, blocking fetches")
		}
		return nil, err
	}

	s.log.Debug().
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched source page")
	return body, nil
}

func (s *Scraper) blockKey() string {
	host := s.URL
	if u, err := url.Parse(s.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	return "ratelimit:" + host
}
