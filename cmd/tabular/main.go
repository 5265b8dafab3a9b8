// Command tabular converts, joins, groups and stores CSV files.
//
// Usage:
//
//	tabular convert [-from-delimiter c] [-to-delimiter c] [-from-encoding e] [-to-encoding e] [-columns a,b] [-rows n] <in> <out>
//	tabular join -on src[:tgt],... [-out file] <source> <target>
//	tabular group -by a,b <in>
//	tabular save <db> <name> <in>
//	tabular load <db> <name> <out>
//	tabular ls <db>
//
// Defaults for the CSV dialect, logging and the store codec come from the environment, see
// internal/config. A .env file in the working directory is loaded first.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/longlodw/tabular/internal/config"
	"github.com/longlodw/tabular/internal/logging"
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cleanup := logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.SeqURL)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		slog.Error("command failed", "error", err)
		cleanup()
		os.Exit(1)
	}
	cleanup()
}
