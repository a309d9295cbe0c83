// Package poller refreshes live scores and news on a fixed interval and hands
// the results to a Publisher. Repeated polls inside the cache TTL are served
// from the cache, so the interval may be shorter than the TTL.
package poller

import (
	"context"
	"time"
	"wolfhub/aggregator"
	"wolfhub/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

const DefaultInterval = 30 * time.Second

var pollResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wolfhub_poll_results_total",
	Help: "Poll results by feed and outcome",
}, []string{"feed", "result"})

// Publisher receives every poll result, including failed ones
type Publisher interface {
	PublishLiveGames(event models.LiveGamesEvent)
	PublishNews(event models.NewsEvent)
}

type Config struct {
	Interval time.Duration
	Sports   []string
	// News enables polling of the news feed alongside the scoreboards
	News bool
}

type Poller struct {
	cfg       Config
	agg       aggregator.FeedAggregator
	publisher Publisher
	now       func() time.Time
}

func New(cfg Config, agg aggregator.FeedAggregator, publisher Publisher) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{
		cfg:       cfg,
		agg:       agg,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run polls once immediately and then every interval until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(p.cfg.Interval), ctx))
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"interval": p.cfg.Interval,
		"sports":   p.cfg.Sports,
		"news":     p.cfg.News,
	}).Info("Starting poller")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping poller")
			return
		case _, ok := <-ticker.C:
			if !ok {
				log.Info("Stopping poller")
				return
			}
			p.Poll(ctx)
		}
	}
}

// Poll runs a single round over every configured sport and the news feed
func (p *Poller) Poll(ctx context.Context) {
	for _, sport := range p.cfg.Sports {
		if ctx.Err() != nil {
			return
		}
		p.pollSport(ctx, sport)
	}
	if p.cfg.News && ctx.Err() == nil {
		p.pollNews(ctx)
	}
}

func (p *Poller) pollSport(ctx context.Context, sport string) {
	games, err := p.agg.FetchLiveGames(ctx, sport)
	event := models.LiveGamesEvent{
		Sport:     sport,
		Games:     games,
		FetchedAt: p.now(),
	}
	if err != nil {
		log.WithFields(log.Fields{
			"sport": sport,
			"error": err,
		}).Error("Error polling live games")
		event.Games = []models.Game{}
		event.Error = err.Error()
		pollResults.WithLabelValues(sport, "error").Inc()
	} else {
		pollResults.WithLabelValues(sport, "ok").Inc()
	}
	p.publisher.PublishLiveGames(event)
}

func (p *Poller) pollNews(ctx context.Context) {
	articles, err := p.agg.FetchArticles(ctx)
	event := models.NewsEvent{
		Articles:  articles,
		FetchedAt: p.now(),
	}
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Error polling news")
		event.Articles = []models.Article{}
		event.Error = err.Error()
		pollResults.WithLabelValues("news", "error").Inc()
	} else {
		pollResults.WithLabelValues("news", "ok").Inc()
	}
	p.publisher.PublishNews(event)
}
