package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/support"
	"github.com/w-h-a/support/internal/logger"
	"github.com/w-h-a/support/internal/telemetry"
	"go.uber.org/zap"
)

var cli struct {
	Globals

	Version kong.VersionFlag `help:"Print the version and exit"`

	Serve  ServeCmd  `cmd:"" help:"Serve the HTTP API"`
	Ingest IngestCmd `cmd:"" help:"Bulk load a CSV into the knowledge base"`
	Search SearchCmd `cmd:"" help:"Search the knowledge base"`
	Stats  StatsCmd  `cmd:"" help:"Show knowledge base size and backends"`
	Clear  ClearCmd  `cmd:"" help:"Delete every document"`
	Ask    AskCmd    `cmd:"" help:"Run one chat turn from the terminal"`
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	ctx := kong.Parse(
		&cli,
		kong.Name("support"),
		kong.Description("Retrieval-augmented customer support assistant."),
		kong.UsageOnError(),
		kong.Vars{"version": support.Version},
	)

	log := logger.New(cli.Debug, cli.LogFile)
	defer log.Sync()

	shutdown, err := telemetry.Init(context.Background(), cli.OtelEndpoint, cli.OtelInsecure)
	if err != nil {
		log.Fatal("failed to start tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	err = ctx.Run(&app{globals: &cli.Globals, logger: log})
	ctx.FatalIfErrorf(err)
}
