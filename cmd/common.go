/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"wolfhub/aggregator"
	"wolfhub/cache"
	"wolfhub/config"
	"wolfhub/upstream"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// loadConfig reads the config file and applies global flag overrides
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return nil, err
	}

	if ctx.IsSet("team-id") {
		cfg.Scores.TeamId = ctx.String("team-id")
	}
	if ctx.IsSet("feed-url") {
		cfg.News.FeedURL = ctx.String("feed-url")
	}
	if ctx.IsSet("timeout") {
		cfg.Upstream.Timeout = config.Duration{Duration: ctx.Duration("timeout")}
	}
	if ctx.IsSet("sport") {
		cfg.Scores.Sports = ctx.StringSlice("sport")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newAggregator(cfg *config.Config) *aggregator.Service {
	store := cache.New()
	up := upstream.New(cfg.UpstreamConfig())

	log.WithFields(log.Fields{
		"team":   cfg.Scores.TeamId,
		"sports": cfg.Scores.Sports,
		"feed":   cfg.News.FeedURL,
	}).Debug("Configured aggregator")

	return aggregator.New(cfg.AggregatorConfig(), store, up, nil, nil)
}

func sportFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "sport",
		Aliases: []string{"s"},
		Usage:   "Sport to follow, may be repeated (football, basketball, baseball)",
		EnvVars: []string{"WOLFHUB_SPORTS"},
	}
}

// printStdout writes v as a single JSON line
func printStdout(v any) {
	line, err := json.Marshal(v)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Error marshalling output")
		return
	}
	fmt.Fprintln(os.Stdout, string(line))
}
