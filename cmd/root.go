/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "wolfhub",
		Usage: "NC State scores and news, cached and aggregated",
		Description: `Aggregates live scores, schedules and rosters for the NC State
		Wolfpack from ESPN together with news from RSS/Atom feeds.

		Every upstream response is kept in an in-memory TTL cache, so the
		rate-limited upstreams see at most one request per key and TTL
		window no matter how many clients ask.

		Flags can generally be set via environment variables, e.g.:

		--config => WOLFHUB_CONFIG=config/wolfhub.toml
		--port => WOLFHUB_PORT=8080
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file, defaults are used when empty",
				EnvVars: []string{"WOLFHUB_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"WOLFHUB_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format, text or json",
				EnvVars: []string{"WOLFHUB_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "team-id",
				Usage:   "ESPN id of the tracked team",
				EnvVars: []string{"WOLFHUB_TEAM_ID"},
			},
			&cli.StringFlag{
				Name:    "feed-url",
				Usage:   "News feed URL",
				EnvVars: []string{"WOLFHUB_FEED_URL"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for upstream requests",
				EnvVars: []string{"WOLFHUB_TIMEOUT"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// Data goes to stdout, logs to stderr
			log.SetOutput(os.Stderr)

			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)

			switch ctx.String("log-format") {
			case "json":
				log.SetFormatter(&log.JSONFormatter{})
			case "text":
				log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			default:
				return fmt.Errorf("invalid log format %q", ctx.String("log-format"))
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			scoresCmd(),
			newsCmd(),
			watchCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
