package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"wolfhub/cmd"

	log "github.com/sirupsen/logrus"
	_ "golang.org/x/crypto/x509roots/fallback" // We need this to make TLS work in scratch containers
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RootApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
