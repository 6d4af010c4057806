package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/tradedesk/internal/config"
	"github.com/zappabad/tradedesk/internal/desk"
	"github.com/zappabad/tradedesk/pkg/logger"
	"github.com/zappabad/tradedesk/tui"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("TRADEDESK_CONFIG"), "config yaml path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The alt screen owns stdout, so logs only go to the file.
	cfg.Log.Console = false
	if cfg.Log.OutputFile == "" {
		cfg.Log.OutputFile = "logs/tradedesk.log"
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	d, err := desk.New(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting desk: %v\n", err)
		os.Exit(1)
	}
	defer d.Close()

	p := tea.NewProgram(tui.NewModel(d), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
