package main

import (
	"fmt"
	"os"

	"github.com/romariotrain/video-stream/internal/app"
	"github.com/romariotrain/video-stream/internal/config"
)

func main() {
	cfg, err := config.LoadStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := app.NewLogger("videostore", cfg.LogLevel, os.Stdout)
	os.Exit(app.Run("videostore", logger, newRunner(cfg, logger)))
}
