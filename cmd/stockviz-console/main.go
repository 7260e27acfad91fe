package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stockviz/internal/app"
	"stockviz/internal/config"
	"stockviz/internal/console"
	"stockviz/internal/util"
)

func main() {
	cfg, err := config.LoadOrDefault(app.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The alt screen owns stdout; log only to the configured file.
	var logOut io.Writer = io.Discard
	if cfg.Logging.File != "" {
		f, err := util.OpenLogFile(cfg.Logging.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := util.NewLogger(logOut, cfg.Logging.Level, cfg.Logging.Format)

	charts, err := app.OpenCharts(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading catalog: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(console.New(charts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
