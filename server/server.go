package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"wolfhub/aggregator"
	"wolfhub/models"
	"wolfhub/news"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	keepAliveInterval = 15 * time.Second
	defaultRecentDays = 7
	feedCacheDuration = time.Minute
)

type ServerConfig struct {
	// Scores and news, sharing one cache
	Aggregator *aggregator.Service

	// Broadcast channels to pass poller results to SSE clients
	Broadcaster *Broadcaster

	// Comma separated origins for CORS, "*" for any
	CorsOrigins string
}

// Returns a fiber.App serving the wolfhub JSON API, SSE streams and feeds
func Server(config *ServerConfig) *fiber.App {
	agg := config.Aggregator
	bc := config.Broadcaster

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New(compress.Config{
		Next: isStream,
	}))

	origins := config.CorsOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Cache-Control",
	}))

	// Re-rendering the feeds is the only work not covered by the data cache
	app.Use(fibercache.New(fibercache.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet || !strings.HasPrefix(c.Path(), "/feed.")
		},
		Expiration: feedCacheDuration,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"cache":   agg.Cache().Stats(),
			"clients": bc.ClientCount(),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	sports := app.Group("/api/sports/:sport")

	sports.Get("/games/live", func(c *fiber.Ctx) error {
		games, err := agg.FetchLiveGames(c.UserContext(), c.Params("sport"))
		if err != nil {
			return err
		}
		return c.JSON(games)
	})

	sports.Delete("/games/live/sse", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		bc.RemoveClient(key)
		return c.Status(fiber.StatusOK).SendString("OK")
	})

	sports.Get("/games/live/sse", func(c *fiber.Ctx) error {
		sport, err := agg.Sport(c.Params("sport"))
		if err != nil {
			return err
		}
		return streamGames(c, bc, sport.String())
	})

	sports.Get("/games/upcoming", func(c *fiber.Ctx) error {
		games, err := agg.FetchUpcomingGames(c.UserContext(), c.Params("sport"))
		if err != nil {
			return err
		}
		return c.JSON(games)
	})

	sports.Get("/games/recent", func(c *fiber.Ctx) error {
		games, err := agg.FetchRecentGames(c.UserContext(), c.Params("sport"))
		if err != nil {
			return err
		}
		return c.JSON(games)
	})

	sports.Get("/games/:id", func(c *fiber.Ctx) error {
		sport, err := agg.Sport(c.Params("sport"))
		if err != nil {
			return err
		}
		game, err := agg.Scores().GameDetails(c.UserContext(), sport, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(game)
	})

	sports.Get("/schedule", func(c *fiber.Ctx) error {
		sport, err := agg.Sport(c.Params("sport"))
		if err != nil {
			return err
		}
		season, err := queryInt(c, "season", 0)
		if err != nil {
			return err
		}
		games, err := agg.Scores().Schedule(c.UserContext(), sport, season)
		if err != nil {
			return err
		}
		return c.JSON(games)
	})

	sports.Get("/team", func(c *fiber.Ctx) error {
		sport, err := agg.Sport(c.Params("sport"))
		if err != nil {
			return err
		}
		team, err := agg.Scores().Team(c.UserContext(), sport)
		if err != nil {
			return err
		}
		return c.JSON(team)
	})

	sports.Get("/roster", func(c *fiber.Ctx) error {
		sport, err := agg.Sport(c.Params("sport"))
		if err != nil {
			return err
		}
		roster, err := agg.Scores().Roster(c.UserContext(), sport)
		if err != nil {
			return err
		}
		return c.JSON(roster)
	})

	sports.Get("/standings", func(c *fiber.Ctx) error {
		sport, err := agg.Sport(c.Params("sport"))
		if err != nil {
			return err
		}
		standings, err := agg.Scores().Standings(c.UserContext(), sport)
		if err != nil {
			return err
		}
		return c.JSON(standings)
	})

	newsAPI := app.Group("/api/news")

	newsAPI.Get("/", func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", 0)
		if err != nil {
			return err
		}
		articles, err := agg.FetchArticles(c.UserContext())
		if err != nil {
			return err
		}
		if limit > 0 {
			articles = news.Latest(articles, limit)
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/search", func(c *fiber.Ctx) error {
		articles, err := agg.SearchArticles(c.UserContext(), c.Query("q", ""))
		if err != nil {
			return err
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/category/:category", func(c *fiber.Ctx) error {
		articles, err := agg.News().ByCategory(c.UserContext(), c.Params("category"))
		if err != nil {
			return err
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/recent", func(c *fiber.Ctx) error {
		days, err := queryInt(c, "days", defaultRecentDays)
		if err != nil {
			return err
		}
		articles, err := agg.News().Recent(c.UserContext(), days)
		if err != nil {
			return err
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/featured", func(c *fiber.Ctx) error {
		articles, err := agg.News().Featured(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/sport/:sport", func(c *fiber.Ctx) error {
		articles, err := agg.News().BySport(c.UserContext(), c.Params("sport"))
		if err != nil {
			return err
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/combined", func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", 0)
		if err != nil {
			return err
		}
		articles, err := agg.News().Combined(c.UserContext(), nil, limit)
		if err != nil {
			return err
		}
		return c.JSON(articles)
	})

	newsAPI.Get("/info", func(c *fiber.Ctx) error {
		info, err := agg.News().Info(c.UserContext(), "")
		if err != nil {
			return err
		}
		return c.JSON(info)
	})

	newsAPI.Delete("/sse", func(c *fiber.Ctx) error {
		bc.RemoveClient(c.Query("key", ""))
		return c.Status(fiber.StatusOK).SendString("OK")
	})

	newsAPI.Get("/sse", func(c *fiber.Ctx) error {
		return streamNews(c, bc)
	})

	publish := func(format news.Format, contentType string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			info, err := agg.News().Info(c.UserContext(), "")
			if err != nil {
				return err
			}
			articles, err := agg.FetchArticles(c.UserContext())
			if err != nil {
				return err
			}
			doc, err := news.Publish(info, articles, format)
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, contentType)
			return c.SendString(doc)
		}
	}
	app.Get("/feed.rss", publish(news.FormatRSS, "application/rss+xml; charset=utf-8"))
	app.Get("/feed.atom", publish(news.FormatAtom, "application/atom+xml; charset=utf-8"))

	return app
}

func isStream(c *fiber.Ctx) bool {
	return strings.HasSuffix(c.Path(), "/sse")
}

// queryInt reads an optional integer query parameter
func queryInt(c *fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Query(name, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
	}
	return value, nil
}

func setStreamHeaders(c *fiber.Ctx) {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
}

// writeEvent writes one SSE frame and flushes it
func writeEvent(w *bufio.Writer, name string, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}

func writeGamesEvent(w *bufio.Writer, event models.LiveGamesEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	name := "games"
	if event.Error != "" {
		name = "error"
	}
	return writeEvent(w, name, string(payload))
}

func writeNewsEvent(w *bufio.Writer, event models.NewsEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	name := "news"
	if event.Error != "" {
		name = "error"
	}
	return writeEvent(w, name, string(payload))
}

func streamGames(c *fiber.Ctx, bc *Broadcaster, sport string) error {
	setStreamHeaders(c)

	// Unique client key
	key := uuid.New().String()
	events := make(chan models.LiveGamesEvent, 10)
	bc.AddGamesClient(key, sport, events)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		aliveChan := time.NewTicker(keepAliveInterval)
		defer aliveChan.Stop()
		defer func() {
			log.Infof("Cleaning up SSE stream for client: %s", key)
			bc.RemoveClient(key)
		}()

		if err := writeEvent(w, "init", key); err != nil {
			log.Errorf("Failed to send init event: %v", err)
			return
		}
		if latest, ok := bc.LatestGames(sport); ok {
			if err := writeGamesEvent(w, latest); err != nil {
				return
			}
		}

		for {
			select {
			case <-aliveChan.C:
				if err := writeEvent(w, "ping", ""); err != nil {
					log.Warnf("Failed to send ping to client %s: %v", key, err)
					return
				}
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeGamesEvent(w, event); err != nil {
					log.Warnf("Failed to send games event to client %s: %v", key, err)
					return
				}
			}
		}
	}))

	return nil
}

func streamNews(c *fiber.Ctx, bc *Broadcaster) error {
	setStreamHeaders(c)

	key := uuid.New().String()
	events := make(chan models.NewsEvent, 10)
	bc.AddNewsClient(key, events)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		aliveChan := time.NewTicker(keepAliveInterval)
		defer aliveChan.Stop()
		defer bc.RemoveClient(key)

		if err := writeEvent(w, "init", key); err != nil {
			return
		}
		if latest, ok := bc.LatestNews(); ok {
			if err := writeNewsEvent(w, latest); err != nil {
				return
			}
		}

		for {
			select {
			case <-aliveChan.C:
				if err := writeEvent(w, "ping", ""); err != nil {
					return
				}
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeNewsEvent(w, event); err != nil {
					log.Warnf("Failed to send news event to client %s: %v", key, err)
					return
				}
			}
		}
	}))

	return nil
}
