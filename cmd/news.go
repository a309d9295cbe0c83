/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"time"
	"wolfhub/models"
	"wolfhub/news"

	"github.com/urfave/cli/v2"
)

func newsCmd() *cli.Command {
	return &cli.Command{
		Name:  "news",
		Usage: "Print news articles",
		Description: `Fetches the configured news feed and prints its articles to stdout.

Filters can be combined; an article is printed when it passes all of them.

Returns each article as a JSON object on a single line.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"q"},
				Usage:   "Only articles mentioning this text",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only articles in a matching category",
			},
			&cli.StringFlag{
				Name:  "about",
				Usage: "Only articles about a sport, using the configured keywords",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Only articles from the last number of days",
			},
			&cli.BoolFlag{
				Name:  "combined",
				Usage: "Merge the main feed with the configured extra feeds",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Print at most this many articles, newest first",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			agg := newAggregator(cfg)

			var articles []models.Article
			if ctx.Bool("combined") {
				articles, err = agg.News().Combined(ctx.Context, nil, 0)
			} else {
				articles, err = agg.FetchArticles(ctx.Context)
			}
			if err != nil {
				return err
			}

			var filters []news.Filter
			if q := ctx.String("search"); q != "" {
				filters = append(filters, &news.KeywordFilter{Query: q})
			}
			if category := ctx.String("category"); category != "" {
				filters = append(filters, &news.CategoryFilter{Category: category})
			}
			if days := ctx.Int("days"); days > 0 {
				articles = news.Recent(articles, days, time.Now())
			}
			articles = news.Apply(articles, filters...)
			if sport := ctx.String("about"); sport != "" {
				articles = news.BySport(articles, sport, cfg.News.Keywords)
			}
			if limit := ctx.Int("limit"); limit > 0 {
				articles = news.Latest(news.NewestFirst(articles), limit)
			}

			for _, article := range articles {
				printStdout(article)
			}
			return nil
		},
	}
}
