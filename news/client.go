// Package news fetches and parses RSS/Atom feeds through the shared TTL cache
// and derives filtered article views from them.
package news

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
	"wolfhub/cache"
	"wolfhub/models"
	"wolfhub/upstream"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFeedURL  = "https://www.backingthepack.com/rss/current.xml"
	DefaultTTL      = 10 * time.Minute
	DefaultFeatured = 5

	acceptXML = "application/rss+xml, application/xml, text/xml"

	// Upper bound on concurrent fetches in Combined
	combinedFetchLimit = 4
)

type Config struct {
	FeedURL string
	// ExtraFeeds are merged with FeedURL by Combined when no urls are given
	ExtraFeeds    []string
	TTL           time.Duration
	Featured      int
	SportKeywords map[string][]string
}

type Client struct {
	cfg      Config
	upstream *upstream.Client
	loader   *cache.Loader
	now      func() time.Time
}

type Option func(*Client)

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(cfg Config, store *cache.Cache, up *upstream.Client, opts ...Option) *Client {
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Featured <= 0 {
		cfg.Featured = DefaultFeatured
	}
	if len(cfg.SportKeywords) == 0 {
		cfg.SportKeywords = DefaultSportKeywords
	}

	c := &Client{
		cfg:      cfg,
		upstream: up,
		loader:   cache.NewLoader(store),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FeedURL() string {
	return c.cfg.FeedURL
}

// Feed returns the parsed feed at url, cached under the url itself.
// The returned feed is shared with the cache and must not be modified.
func (c *Client) Feed(ctx context.Context, url string) (*models.Feed, error) {
	value, err := c.loader.Load(ctx, url, c.cfg.TTL, func(ctx context.Context) (any, error) {
		log.WithFields(log.Fields{
			"url": url,
		}).Info("Fetching news feed")

		body, err := c.upstream.Get(ctx, url, acceptXML)
		if err != nil {
			return nil, err
		}
		return Parse(body, url, c.now())
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	return value.(*models.Feed), nil
}

// Articles returns the items of the configured feed in feed order
func (c *Client) Articles(ctx context.Context) ([]models.Article, error) {
	feed, err := c.Feed(ctx, c.cfg.FeedURL)
	if err != nil {
		return nil, err
	}
	return slices.Clone(feed.Items), nil
}

func (c *Client) Info(ctx context.Context, url string) (models.FeedInfo, error) {
	if url == "" {
		url = c.cfg.FeedURL
	}
	feed, err := c.Feed(ctx, url)
	if err != nil {
		return models.FeedInfo{}, err
	}
	return models.FeedInfo{
		Url:           feed.Url,
		Title:         feed.Title,
		Description:   feed.Description,
		Link:          feed.Link,
		LastBuildDate: feed.LastBuildDate,
		ItemCount:     len(feed.Items),
	}, nil
}

func (c *Client) Latest(ctx context.Context, limit int) ([]models.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return Latest(articles, limit), nil
}

func (c *Client) Search(ctx context.Context, query string) ([]models.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return Search(articles, query), nil
}

func (c *Client) ByCategory(ctx context.Context, category string) ([]models.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return ByCategory(articles, category), nil
}

func (c *Client) Recent(ctx context.Context, days int) ([]models.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return Recent(articles, days, c.now()), nil
}

func (c *Client) Featured(ctx context.Context) ([]models.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return Featured(articles, c.cfg.Featured), nil
}

func (c *Client) BySport(ctx context.Context, sport string) ([]models.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return BySport(articles, sport, c.cfg.SportKeywords), nil
}

// Combined merges several feeds, newest first, truncated to limit when limit
// is positive. Feeds that fail are logged and skipped. With no urls the
// configured feed and ExtraFeeds are used.
func (c *Client) Combined(ctx context.Context, urls []string, limit int) ([]models.Article, error) {
	if len(urls) == 0 {
		urls = append([]string{c.cfg.FeedURL}, c.cfg.ExtraFeeds...)
	}

	var (
		mu     sync.Mutex
		merged []models.Article
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(combinedFetchLimit)

	for _, url := range urls {
		url := url
		g.Go(func() error {
			feed, err := c.Feed(gctx, url)
			if err != nil {
				log.WithFields(log.Fields{
					"url":   url,
					"error": err,
				}).Warn("Skipping news feed")
				return nil
			}
			mu.Lock()
			merged = append(merged, feed.Items...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged = NewestFirst(merged)
	if limit > 0 {
		merged = Latest(merged, limit)
	}
	return merged, nil
}
