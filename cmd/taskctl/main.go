// Command taskctl evaluates the assignment and status engine over snapshot
// files, without a database.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("taskctl"),
		kong.Description("taskctl resolves task assignments and statuses from snapshot files"),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(&cliCtx{Context: context.Background(), Logger: logger, Out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
