/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"wolfhub/models"

	"github.com/urfave/cli/v2"
)

func scoresCmd() *cli.Command {
	return &cli.Command{
		Name:  "scores",
		Usage: "Print games for the tracked team",
		Description: `Fetches games for each configured sport and prints them to stdout.

Views:
  live       games on today's scoreboard
  upcoming   scheduled games in the next window (7 days by default)
  recent     games played in the last window
  schedule   the whole season schedule

Returns each game as a JSON object on a single line. Use a tool like jq to
process the output.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			sportFlag(),
			&cli.StringFlag{
				Name:    "view",
				Aliases: []string{"v"},
				Value:   "live",
				Usage:   "Which games to print: live, upcoming, recent or schedule",
			},
			&cli.IntFlag{
				Name:  "season",
				Usage: "Season year for the schedule view, current season when zero",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			agg := newAggregator(cfg)
			sports, _ := cfg.Sports()

			for _, sport := range sports {
				var games []models.Game
				switch view := ctx.String("view"); view {
				case "live":
					games, err = agg.FetchLiveGames(ctx.Context, sport.String())
				case "upcoming":
					games, err = agg.FetchUpcomingGames(ctx.Context, sport.String())
				case "recent":
					games, err = agg.FetchRecentGames(ctx.Context, sport.String())
				case "schedule":
					games, err = agg.Scores().Schedule(ctx.Context, sport, ctx.Int("season"))
				default:
					return fmt.Errorf("unknown view %q", view)
				}
				if err != nil {
					return err
				}

				for _, game := range games {
					printStdout(game)
				}
			}
			return nil
		},
	}
}
