package config

import (
	"os"
	"slices"
	"time"
	"wolfhub/aggregator"
	"wolfhub/espn"
	"wolfhub/news"
	"wolfhub/poller"
	"wolfhub/upstream"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Duration reads Go duration strings such as "5m" or "30s" from TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", string(text))
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// Comma separated list of origins allowed by CORS
	CorsOrigins string `toml:"cors_origins"`
}

type UpstreamConfig struct {
	UserAgent         string   `toml:"user_agent"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
}

type ScoresConfig struct {
	BaseURL string   `toml:"base_url"`
	TeamId  string   `toml:"team_id"`
	TTL     Duration `toml:"ttl"`
	Window  Duration `toml:"window"`
	Sports  []string `toml:"sports"`
}

type NewsConfig struct {
	FeedURL    string   `toml:"feed_url"`
	ExtraFeeds []string `toml:"extra_feeds"`
	TTL        Duration `toml:"ttl"`
	Featured   int      `toml:"featured"`
	// Keywords per sport for the by-sport news view
	Keywords map[string][]string `toml:"keywords"`
}

type PollerConfig struct {
	Interval Duration `toml:"interval"`
	News     bool     `toml:"news"`
}

// Config is the top-level wolfhub configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Upstream UpstreamConfig `toml:"upstream"`
	Scores   ScoresConfig   `toml:"scores"`
	News     NewsConfig     `toml:"news"`
	Poller   PollerConfig   `toml:"poller"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "",
			Port:        3000,
			CorsOrigins: "*",
		},
		Upstream: UpstreamConfig{
			UserAgent:         upstream.DefaultUserAgent,
			Timeout:           Duration{30 * time.Second},
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Scores: ScoresConfig{
			BaseURL: espn.DefaultBaseURL,
			TeamId:  espn.DefaultTeamId,
			TTL:     Duration{espn.DefaultTTL},
			Window:  Duration{espn.DefaultWindow},
			Sports:  lo.Map(espn.AllSports, func(s espn.Sport, _ int) string { return s.String() }),
		},
		News: NewsConfig{
			FeedURL:  news.DefaultFeedURL,
			TTL:      Duration{news.DefaultTTL},
			Featured: news.DefaultFeatured,
			Keywords: cloneKeywords(news.DefaultSportKeywords),
		},
		Poller: PollerConfig{
			Interval: Duration{poller.DefaultInterval},
			News:     true,
		},
	}
}

// cloneKeywords keeps TOML decoding from writing into the package defaults
func cloneKeywords(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for sport, words := range in {
		out[sport] = slices.Clone(words)
	}
	return out
}

// LoadConfig reads a TOML file on top of the defaults. An empty path returns
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse config file %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config keys in %s: %v", path, undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Upstream.Timeout.Duration < 0 {
		return errors.New("upstream timeout must not be negative")
	}
	if c.Scores.TTL.Duration <= 0 || c.News.TTL.Duration <= 0 {
		return errors.New("cache TTLs must be positive")
	}
	if c.Poller.Interval.Duration <= 0 {
		return errors.New("poller interval must be positive")
	}
	if c.Scores.TeamId == "" {
		return errors.New("scores team_id is required")
	}
	if c.News.FeedURL == "" {
		return errors.New("news feed_url is required")
	}
	if _, err := c.Sports(); err != nil {
		return err
	}
	return nil
}

// Sports parses the configured sport names
func (c *Config) Sports() ([]espn.Sport, error) {
	if len(c.Scores.Sports) == 0 {
		return nil, errors.New("at least one sport must be configured")
	}
	sports := make([]espn.Sport, 0, len(c.Scores.Sports))
	for _, name := range c.Scores.Sports {
		sport, err := espn.ParseSport(name)
		if err != nil {
			return nil, err
		}
		sports = append(sports, sport)
	}
	return lo.Uniq(sports), nil
}

func (c *Config) UpstreamConfig() upstream.Config {
	return upstream.Config{
		UserAgent:         c.Upstream.UserAgent,
		Timeout:           c.Upstream.Timeout.Duration,
		RequestsPerSecond: c.Upstream.RequestsPerSecond,
		Burst:             c.Upstream.Burst,
	}
}

// AggregatorConfig assumes Validate has passed
func (c *Config) AggregatorConfig() aggregator.Config {
	sports, _ := c.Sports()
	return aggregator.Config{
		Scores: espn.Config{
			BaseURL: c.Scores.BaseURL,
			TeamId:  c.Scores.TeamId,
			TTL:     c.Scores.TTL.Duration,
			Window:  c.Scores.Window.Duration,
			Sports:  sports,
		},
		News: news.Config{
			FeedURL:       c.News.FeedURL,
			ExtraFeeds:    c.News.ExtraFeeds,
			TTL:           c.News.TTL.Duration,
			Featured:      c.News.Featured,
			SportKeywords: c.News.Keywords,
		},
	}
}

// PollerConfig assumes Validate has passed
func (c *Config) PollerConfig() poller.Config {
	sports, _ := c.Sports()
	return poller.Config{
		Interval: c.Poller.Interval.Duration,
		Sports:   lo.Map(sports, func(s espn.Sport, _ int) string { return s.String() }),
		News:     c.Poller.News,
	}
}
