// Command server runs the municipal service registry: the versioned REST
// API, the change event channel and the GraphQL endpoint.
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) and the
// environment; run with -h to list the variables. SIGINT and SIGTERM
// trigger a graceful shutdown.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/civic-registry/internal/app"
	"github.com/heartmarshall/civic-registry/internal/config"
)

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		_, _ = out.Write([]byte("Usage: server\n\n"))
		config.Usage(out)
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("server: %v", err)
		os.Exit(1)
	}
}
