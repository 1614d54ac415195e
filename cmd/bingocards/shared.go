package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/bingocards/internal/config"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))
	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// setupLogger configures charmbracelet/log for stderr at the configured level.
func setupLogger(level log.Level, debug bool) *log.Logger {
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "bingocards",
	})
}

// loadConfig reads the config file named on the command line.
func loadConfig(cli *CLI) (*config.Config, error) {
	return config.Load(cli.Config)
}

// setupSignalHandler creates a context that is cancelled on interrupt signals.
func setupSignalHandler(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn("received signal, stopping", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
