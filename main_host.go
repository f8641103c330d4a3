//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ember/app"
	"ember/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var debug bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.DurationVar(&cfg.Duration, "duration", 0, "Stop after this long in headless mode (0 = run forever).")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging.")
	flag.Parse()

	boot := func(h hal.HAL) {
		app.RunWithConfig(h, app.Config{Debug: debug})
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, boot, cfg); err != nil && err != context.Canceled {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(boot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
