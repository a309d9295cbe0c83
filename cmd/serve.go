/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wolfhub/poller"
	"wolfhub/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the wolfhub API",
		Description: `Starts the wolfhub HTTP server and the live score poller.

The poller refreshes the scoreboard of every configured sport, and the news
feed, every 30 seconds and pushes the results to Server-Sent Event clients.
All JSON endpoints read through the same TTL cache as the poller.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Host to listen on",
				EnvVars: []string{"WOLFHUB_HOST"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				EnvVars: []string{"WOLFHUB_PORT"},
			},
			sportFlag(),
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if ctx.IsSet("host") {
				cfg.Server.Host = ctx.String("host")
			}
			if ctx.IsSet("port") {
				cfg.Server.Port = ctx.Int("port")
			}

			agg := newAggregator(cfg)
			bc := server.NewBroadcaster()
			app := server.Server(&server.ServerConfig{
				Aggregator:  agg,
				Broadcaster: bc,
				CorsOrigins: cfg.Server.CorsOrigins,
			})
			p := poller.New(cfg.PollerConfig(), agg, bc)

			pollCtx, stopPolling := context.WithCancel(ctx.Context)
			defer stopPolling()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Run(pollCtx)
			}()

			// Graceful shutdown
			go func() {
				<-ctx.Context.Done()
				log.Info("Gracefully shutting down...")
				stopPolling()
				bc.Shutdown()
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.WithFields(log.Fields{
						"error": err,
					}).Error("Error shutting down server")
				}
			}()

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			log.WithFields(log.Fields{
				"addr": addr,
			}).Info("Starting server")

			err = app.Listen(addr)

			stopPolling()
			wg.Wait()
			log.Info("Done!")
			return err
		},
	}
}
