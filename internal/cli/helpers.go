package cli

import (
	"fmt"
	"io"

	"github.com/breeze-rmm/breeze-console/internal/config"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/services"
)

// headless holds what the non-interactive commands need.
type headless struct {
	cfg     *config.Config
	manager *services.Manager
	logs    io.Closer
}

// openHeadless loads configuration and services without starting the
// polling loop. Logs go to stderr.
func openHeadless() (*headless, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logs, err := logger.Init(cfg.LogLevel, "")
	if err != nil {
		return nil, err
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &headless{cfg: cfg, manager: mgr, logs: logs}, nil
}

func (h *headless) Close() {
	if err := h.manager.Close(); err != nil {
		logger.Warn("error closing services", "error", err)
	}
	h.logs.Close()
}

// profileName returns the display name of the active profile.
func (h *headless) profileName() string {
	if p := h.manager.Profiles().GetActiveProfile(); p != nil {
		return p.DisplayName()
	}
	return "Breeze"
}
