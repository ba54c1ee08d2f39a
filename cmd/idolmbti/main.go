// cmd/idolmbti/main.go
//
// This is the entry point for the idol MBTI picker.
//
// Flow:
// 1. Resolve the project directory (flag or cwd) and create .idolmbti/
// 2. Load config (config.yaml, .env, environment)
// 3. Open the session logbook and launch the TUI

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kingrea/idolmbti/internal/config"
	"github.com/kingrea/idolmbti/internal/logbook"
	"github.com/kingrea/idolmbti/internal/tui"
)

func main() {
	projectDir := flag.String("project", "", "directory holding .idolmbti/ (defaults to cwd)")
	catalogPath := flag.String("catalog", "", "idol catalog file (JSON or YAML); overrides config")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	project, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}

	if err := config.InitDir(project); err != nil {
		die("initialize %s directory: %v", config.AppDir, err)
	}
	if *catalogPath != "" {
		abs, err := filepath.Abs(*catalogPath)
		if err != nil {
			die("resolve catalog path: %v", err)
		}
		if err := os.Setenv(config.EnvCatalog, abs); err != nil {
			die("set catalog override: %v", err)
		}
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		die("load config: %v", err)
	}

	lb, err := logbook.New(cfg.LogFile(), cfg.LogLevel())
	if err != nil {
		die("open logbook: %v", err)
	}
	defer lb.Close()

	app, err := tui.NewApp(cfg, tui.WithLogbook(lb))
	if err != nil {
		lb.Error("Startup failed: %v", err)
		die("start picker: %v", err)
	}

	// Run blocks until the user quits
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		lb.Error("TUI exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "idolmbti: "+format+"\n", args...)
	os.Exit(1)
}
