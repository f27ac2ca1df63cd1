package infra

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// PrintBanner shows the startup banner: pair, action and mode, colored
// by how much money the run can lose.
func PrintBanner(cfg *Config, action string) {
	mode := strings.ToUpper(cfg.Trading.Mode)

	color := colorCyan
	modeDesc := "PAPER (SIMULATED VENUE)"
	if mode == "REAL" {
		color = colorRed
		modeDesc = "REAL MONEY TRADING"
	}
	if action == "sell_all" || action == "buy_all" {
		if mode != "REAL" {
			color = colorYellow
		}
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, colorReset)
	fmt.Printf("%s#   %-53s #%s\n", color, cfg.App.Name+" "+cfg.App.Version, colorReset)
	fmt.Printf("%s#   PAIR:   %-45s #%s\n", color, cfg.Pair(), colorReset)
	fmt.Printf("%s#   ACTION: %-45s #%s\n", color, strings.ToUpper(action), colorReset)
	fmt.Printf("%s#   MODE:   %-45s #%s\n", color, modeDesc, colorReset)
	if mode == "REAL" {
		fmt.Printf("%s#   WARNING: ORDERS WILL BE PLACED WITH REAL FUNDS        #%s\n", colorRed, colorReset)
	}
	fmt.Printf("%s###########################################################%s\n", color, colorReset)
	fmt.Println()
}
