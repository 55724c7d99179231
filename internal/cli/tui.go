package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/config"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/services"
	"github.com/breeze-rmm/breeze-console/internal/ui/tabs/dashboard"
	"github.com/breeze-rmm/breeze-console/internal/ui/tabs/history"
	"github.com/breeze-rmm/breeze-console/internal/ui/tabs/info"
	"github.com/breeze-rmm/breeze-console/internal/ui/tabs/integrations"
	"github.com/breeze-rmm/breeze-console/internal/ui/tabs/snapshots"
)

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The TUI owns the terminal, so logs always go to a file here.
	logCloser, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		history.New(state, cfg.UsageHistoryDays, ""),
		integrations.New(state, svcManager.Integrations()),
		snapshots.New(state, svcManager.Backup()),
		info.New(state, cfg),
	})

	svcManager.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
