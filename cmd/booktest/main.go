// Command booktest streams the push order book for one pair and prints
// the top of book after every change. Diagnostic tool for checking
// connectivity and pair spelling before a real run.
//
//	booktest BTC_XMR
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/timucin/cyrpto-trader/internal/gateway/poloniex"
)

func main() {
	wsURL := flag.String("url", "wss://api2.poloniex.com", "push API endpoint")
	flag.Parse()

	pair := flag.Arg(0)
	if pair == "" {
		fmt.Fprintln(os.Stderr, "usage: booktest [-url endpoint] PAIR")
		os.Exit(2)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := poloniex.NewBookWatcher(*wsURL, pair, func(top poloniex.TopOfBook) {
		fmt.Printf("%s  bid %s  ask %s\n", pair, top.Bid, top.Ask)
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	<-ctx.Done()
}
