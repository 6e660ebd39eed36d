package source

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"sjsage522/filmwaiver/helpers"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/services/cache"
)

const robotsCacheTTL = time.Hour

// RobotsChecker answers whether a URL may be fetched according to the
// host's robots.txt. Fetched rules are kept in the cache service for an hour.
type RobotsChecker struct {
	client *http.Client
	cache  cache.CacheService
	log    *logger.Logger
}

// NewRobotsChecker creates a checker storing rules in cacheSvc
func NewRobotsChecker(client *http.Client, cacheSvc cache.CacheService) *RobotsChecker {
	if cacheSvc == nil {
		cacheSvc = cache.NewMemoryService()
	}
	return &RobotsChecker{
		client: client,
		cache:  cacheSvc,
		log:    logger.ForFetcher().WithField("component", "robots"),
	}
}

// IsAllowed reports whether userAgent may fetch rawURL. Missing or unreadable
// robots.txt files allow everything.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}

	domain := u.Scheme + "://" + u.Host
	data, err := r.robots(ctx, domain)
	if err != nil {
		r.log.Debug().Err(err).Str("domain", domain).Msg("robots.txt unavailable, allowing")
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.FindGroup(userAgent).Test(path), nil
}

func (r *RobotsChecker) robots(ctx context.Context, domain string) (*robotstxt.RobotsData, error) {
	key := "robots:" + domain

	body, err := r.cache.Get(key)
	if err != nil {
		body, err = helpers.FetchWithBrowserHeaders(ctx, r.client, domain+"/robots.txt")
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(key, body, robotsCacheTTL); err != nil {
			r.log.Warn().Err(err).Msg("Failed to cache robots.txt")
		}
	}

	return robotstxt.FromBytes(body)
}
