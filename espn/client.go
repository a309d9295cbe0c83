// Package espn reads scores, schedules and rosters for the tracked team from
// the ESPN site API, through the shared TTL cache.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"wolfhub/cache"
	"wolfhub/models"
	"wolfhub/upstream"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	DefaultTeamId  = "152"
	DefaultTTL     = 5 * time.Minute
	DefaultWindow  = 7 * 24 * time.Hour

	// ACC
	standingsGroup = "1"
)

type Config struct {
	BaseURL string
	// TeamId is the ESPN id of the tracked team
	TeamId string
	TTL    time.Duration
	// Window bounds how far ahead and back the upcoming and recent views look
	Window time.Duration
	Sports []Sport
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

// New builds a client that stores responses in store. The cache is shared
// with other fetchers; keys are namespaced per endpoint and sport.
func New(cfg Config, store *cache.Cache, up *upstream.Client, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TeamId == "" {
		cfg.TeamId = DefaultTeamId
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if len(cfg.Sports) == 0 {
		cfg.Sports = AllSports
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

func (c *Client) TeamId() string {
	return c.cfg.TeamId
}

func (c *Client) Sports() []Sport {
	return c.cfg.Sports
}

func (c *Client) sportURL(sport Sport, suffix string) string {
	return c.cfg.BaseURL + "/" + sport.Path() + "/" + suffix
}

// fetch reads key through the cache, decoding a miss from rawURL into a new T
func fetch[T any](ctx context.Context, c *Client, key string, rawURL string) (*T, error) {
	value, err := c.loader.Load(ctx, key, c.cfg.TTL, func(ctx context.Context) (any, error) {
		log.WithFields(log.Fields{
			"key": key,
			"url": rawURL,
		}).Info("Fetching from ESPN")

		out := new(T)
		if err := c.upstream.GetJSON(ctx, rawURL, out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*T), nil
}

// LiveGames returns the scoreboard games that include the tracked team.
// The scoreboard is cached under live-games-{sport}.
func (c *Client) LiveGames(ctx context.Context, sport Sport) ([]models.Game, error) {
	board, err := fetch[scoreboardResponse](ctx, c, "live-games-"+sport.String(), c.sportURL(sport, "scoreboard"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s scoreboard: %w", sport, err)
	}
	return trackedGames(board.Events, sport, c.cfg.TeamId), nil
}

// IsPlaying reports whether the tracked team has a game in progress
func (c *Client) IsPlaying(ctx context.Context, sport Sport) (bool, error) {
	games, err := c.LiveGames(ctx, sport)
	if err != nil {
		return false, err
	}
	return len(WithStatus(games, models.StatusLive)) > 0, nil
}

// Schedule returns the tracked team's season schedule. A zero season asks
// ESPN for the current one.
func (c *Client) Schedule(ctx context.Context, sport Sport, season int) ([]models.Game, error) {
	rawURL := c.sportURL(sport, "teams/"+url.PathEscape(c.cfg.TeamId)+"/schedule")
	keySeason := season
	if season != 0 {
		rawURL += fmt.Sprintf("?season=%d", season)
	} else {
		keySeason = c.now().Year()
	}

	key := fmt.Sprintf("schedule-%s-%d", sport, keySeason)
	sched, err := fetch[scheduleResponse](ctx, c, key, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s schedule: %w", sport, err)
	}
	return trackedGames(sched.Events, sport, c.cfg.TeamId), nil
}

// UpcomingGames returns scheduled games from now until now+Window
func (c *Client) UpcomingGames(ctx context.Context, sport Sport) ([]models.Game, error) {
	games, err := c.Schedule(ctx, sport, 0)
	if err != nil {
		return nil, err
	}
	now := c.now()
	return Between(games, now, now.Add(c.cfg.Window)), nil
}

// RecentGames returns scheduled games from now-Window until now
func (c *Client) RecentGames(ctx context.Context, sport Sport) ([]models.Game, error) {
	games, err := c.Schedule(ctx, sport, 0)
	if err != nil {
		return nil, err
	}
	now := c.now()
	return Between(games, now.Add(-c.cfg.Window), now), nil
}

func (c *Client) Team(ctx context.Context, sport Sport) (models.Team, error) {
	rawURL := c.sportURL(sport, "teams/"+url.PathEscape(c.cfg.TeamId))
	resp, err := fetch[teamResponse](ctx, c, "team-"+sport.String(), rawURL)
	if err != nil {
		return models.Team{}, fmt.Errorf("fetch %s team: %w", sport, err)
	}

	t := resp.Team
	return models.Team{
		Id:               t.Id,
		DisplayName:      t.DisplayName,
		ShortDisplayName: t.ShortDisplayName,
		Abbreviation:     t.Abbreviation,
		Color:            t.Color,
		AlternateColor:   t.AlternateColor,
		Logo:             t.logo(),
		Records: lo.Map(t.Record.Items, func(item recordItem, _ int) models.Record {
			return models.Record{Description: item.Description, Type: item.Type, Summary: item.Summary}
		}),
	}, nil
}

func (c *Client) Roster(ctx context.Context, sport Sport) ([]models.Athlete, error) {
	rawURL := c.sportURL(sport, "teams/"+url.PathEscape(c.cfg.TeamId)+"/roster")
	resp, err := fetch[rosterResponse](ctx, c, "roster-"+sport.String(), rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s roster: %w", sport, err)
	}

	athletes, err := flattenRoster(resp.Athletes)
	if err != nil {
		return nil, fmt.Errorf("fetch %s roster: %w", sport, &upstream.ParseError{Source: rawURL, Err: err})
	}
	return athletes, nil
}

func flattenRoster(raw []json.RawMessage) ([]models.Athlete, error) {
	athletes := make([]models.Athlete, 0, len(raw))
	for _, msg := range raw {
		var group athleteGroup
		if err := json.Unmarshal(msg, &group); err != nil {
			return nil, err
		}
		if group.Items != nil {
			for _, a := range group.Items {
				athletes = append(athletes, toAthlete(a))
			}
			continue
		}

		var a athlete
		if err := json.Unmarshal(msg, &a); err != nil {
			return nil, err
		}
		athletes = append(athletes, toAthlete(a))
	}
	return athletes, nil
}

func toAthlete(a athlete) models.Athlete {
	return models.Athlete{
		Id:          a.Id,
		FullName:    a.FullName,
		DisplayName: a.DisplayName,
		Jersey:      a.Jersey,
		Position:    a.Position.Abbreviation,
		Headshot:    a.Headshot.Href,
	}
}

// GameDetails looks up a single game. Unlike the list views it does not
// require the tracked team to be playing; derived fields are filled when it is.
func (c *Client) GameDetails(ctx context.Context, sport Sport, gameId string) (models.Game, error) {
	rawURL := c.sportURL(sport, "summary?event="+url.QueryEscape(gameId))
	resp, err := fetch[summaryResponse](ctx, c, fmt.Sprintf("game-details-%s-%s", sport, gameId), rawURL)
	if err != nil {
		return models.Game{}, fmt.Errorf("fetch %s game %s: %w", sport, gameId, err)
	}

	if game, ok := trackedGame(resp.Header, sport, c.cfg.TeamId); ok {
		return game, nil
	}
	game, ok := baseGame(resp.Header, sport)
	if !ok {
		return models.Game{}, fmt.Errorf("fetch %s game %s: %w", sport, gameId,
			&upstream.ParseError{Source: rawURL, Err: fmt.Errorf("summary has no competition")})
	}
	return game, nil
}

// Standings returns the ACC table for sport
func (c *Client) Standings(ctx context.Context, sport Sport) ([]models.Standing, error) {
	rawURL := c.sportURL(sport, "standings?group="+standingsGroup)
	resp, err := fetch[standingsResponse](ctx, c, "standings-"+sport.String(), rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s standings: %w", sport, err)
	}

	tables := []standingsTable{resp.Standings}
	for _, child := range resp.Children {
		tables = append(tables, child.Standings)
	}

	standings := []models.Standing{}
	for _, table := range tables {
		for _, entry := range table.Entries {
			row := models.Standing{
				TeamId:      entry.Team.Id,
				DisplayName: entry.Team.DisplayName,
			}
			for _, stat := range entry.Stats {
				switch stat.Name {
				case "wins":
					row.Wins = int(stat.Value)
				case "losses":
					row.Losses = int(stat.Value)
				case "winPercent":
					row.WinPercent = stat.Value
				case "overall":
					row.Summary = stat.DisplayValue
				}
			}
			standings = append(standings, row)
		}
	}
	return standings, nil
}

// AllSports fetches schedule, team and roster for every configured sport
// concurrently. The first error cancels the rest.
func (c *Client) AllSports(ctx context.Context) (map[Sport]models.SportBundle, error) {
	bundles := make([]models.SportBundle, len(c.cfg.Sports))
	g, gctx := errgroup.WithContext(ctx)

	for i, sport := range c.cfg.Sports {
		i, sport := i, sport
		bundles[i].Sport = sport.String()
		g.Go(func() error {
			games, err := c.Schedule(gctx, sport, 0)
			bundles[i].Games = games
			return err
		})
		g.Go(func() error {
			team, err := c.Team(gctx, sport)
			bundles[i].Team = team
			return err
		})
		g.Go(func() error {
			roster, err := c.Roster(gctx, sport)
			bundles[i].Roster = roster
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[Sport]models.SportBundle, len(bundles))
	for i, sport := range c.cfg.Sports {
		result[sport] = bundles[i]
	}
	return result, nil
}
