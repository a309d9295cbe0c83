/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"wolfhub/models"
	"wolfhub/poller"

	"github.com/urfave/cli/v2"
)

// stdoutPublisher prints every poll result as a JSON line
type stdoutPublisher struct{}

func (stdoutPublisher) PublishLiveGames(event models.LiveGamesEvent) {
	printStdout(event)
}

func (stdoutPublisher) PublishNews(event models.NewsEvent) {
	printStdout(event)
}

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll live scores and print every update",
		Description: `Polls the scoreboard of each configured sport and the news feed on a
fixed interval until interrupted. News polling follows poller.news in the
config file (on by default) and can be turned off with --news=false.

Each poll result is printed as a JSON object on a single line, failed polls
included (with the error field set). Polls inside the cache TTL do not reach
the upstreams.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			sportFlag(),
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Time between polls",
				EnvVars: []string{"WOLFHUB_POLL_INTERVAL"},
			},
			&cli.BoolFlag{
				Name:  "news",
				Usage: "Poll the news feed as well, overrides poller.news",
				Value: true,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			pollerCfg := cfg.PollerConfig()
			if ctx.IsSet("interval") {
				pollerCfg.Interval = ctx.Duration("interval")
			}
			if ctx.IsSet("news") {
				pollerCfg.News = ctx.Bool("news")
			}

			p := poller.New(pollerCfg, newAggregator(cfg), stdoutPublisher{})
			p.Run(ctx.Context)
			return nil
		},
	}
}

var _ poller.Publisher = stdoutPublisher{}
