// Package aggregator combines the score and news fetchers behind the
// interface the server and poller consume. Both fetchers share one cache.
package aggregator

import (
	"context"
	"wolfhub/cache"
	"wolfhub/espn"
	"wolfhub/models"
	"wolfhub/news"
	"wolfhub/upstream"

	"github.com/samber/lo"
)

// FeedAggregator is what views and the poller need from the hub. Sports are
// given by name and rejected with *espn.InvalidSportError when unknown.
type FeedAggregator interface {
	FetchLiveGames(ctx context.Context, sport string) ([]models.Game, error)
	FetchUpcomingGames(ctx context.Context, sport string) ([]models.Game, error)
	FetchRecentGames(ctx context.Context, sport string) ([]models.Game, error)
	FetchArticles(ctx context.Context) ([]models.Article, error)
	SearchArticles(ctx context.Context, query string) ([]models.Article, error)
}

type Config struct {
	Scores espn.Config
	News   news.Config
}

type Service struct {
	store  *cache.Cache
	scores *espn.Client
	news   *news.Client
}

var _ FeedAggregator = (*Service)(nil)

func New(cfg Config, store *cache.Cache, up *upstream.Client, espnOpts []espn.Option, newsOpts []news.Option) *Service {
	return &Service{
		store:  store,
		scores: espn.New(cfg.Scores, store, up, espnOpts...),
		news:   news.New(cfg.News, store, up, newsOpts...),
	}
}

func (s *Service) Scores() *espn.Client {
	return s.scores
}

func (s *Service) News() *news.Client {
	return s.news
}

func (s *Service) Cache() *cache.Cache {
	return s.store
}

// Sport resolves name to one of the configured sports
func (s *Service) Sport(name string) (espn.Sport, error) {
	sport, err := espn.ParseSport(name)
	if err != nil {
		return "", err
	}
	if !lo.Contains(s.scores.Sports(), sport) {
		return "", &espn.InvalidSportError{Name: name}
	}
	return sport, nil
}

func (s *Service) FetchLiveGames(ctx context.Context, sport string) ([]models.Game, error) {
	sp, err := s.Sport(sport)
	if err != nil {
		return nil, err
	}
	return s.scores.LiveGames(ctx, sp)
}

func (s *Service) FetchUpcomingGames(ctx context.Context, sport string) ([]models.Game, error) {
	sp, err := s.Sport(sport)
	if err != nil {
		return nil, err
	}
	return s.scores.UpcomingGames(ctx, sp)
}

func (s *Service) FetchRecentGames(ctx context.Context, sport string) ([]models.Game, error) {
	sp, err := s.Sport(sport)
	if err != nil {
		return nil, err
	}
	return s.scores.RecentGames(ctx, sp)
}

func (s *Service) FetchArticles(ctx context.Context) ([]models.Article, error) {
	return s.news.Articles(ctx)
}

func (s *Service) SearchArticles(ctx context.Context, query string) ([]models.Article, error) {
	return s.news.Search(ctx, query)
}
