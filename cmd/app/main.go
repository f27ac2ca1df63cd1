// Command app runs the scalper. The single positional argument picks
// the mode:
//
//	app scalp      trade the configured pair until interrupted
//	app sell_all   liquidate the coin position, then exit
//	app buy_all    convert the currency into coin, then exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/timucin/cyrpto-trader/internal/app"
	"github.com/timucin/cyrpto-trader/internal/engine"
	"github.com/timucin/cyrpto-trader/internal/infra"
)

func main() {
	configPath := flag.String("config", "", "path to settings.yaml (default: auto-detect)")
	flag.Parse()

	modeArg := flag.Arg(0)
	if modeArg == "" {
		modeArg = string(engine.ModeScalp)
	}
	mode, err := engine.ParseMode(modeArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	a, err := app.Bootstrap(*configPath)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	infra.PrintBanner(a.Config, string(mode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := engine.NewScheduler(a.Gateway, a.Config, engine.SystemClock{}, a.Journal)
	if err := sched.Run(ctx, mode); err != nil {
		slog.Error("trading loop failed", slog.Any("error", err))
		a.Close()
		os.Exit(1)
	}

	slog.Info("shut down cleanly")
}
