package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"chronam-essays/internal/app"
	"chronam-essays/internal/config"
	"chronam-essays/internal/observability"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "chronam-essays",
	Short:         "Collects Chronicling America title essays and extracts people and organizations from them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the YAML config.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session конфигурация, логгер и оркестратор одной команды
type session struct {
	cfg    *config.Config
	logger *observability.Logger
	orch   *app.Orchestrator
	ctx    context.Context
	cancel context.CancelFunc
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(observability.LoggerOptions{
		LogPath:    cfg.Observability.LogPath,
		LogLevel:   cfg.Observability.LogLevel,
		MaxSizeMB:  cfg.Observability.LogMaxSizeMB,
		MaxBackups: cfg.Observability.LogMaxBackups,
	})
	if err != nil {
		return nil, err
	}

	orch, err := app.NewOrchestrator(cfg, filepath.Dir(configPath), logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	logger.Info("Config loaded", "path", configPath, "command", cmd.Name(), "run_id", orch.RunID())

	ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
	return &session{cfg: cfg, logger: logger, orch: orch, ctx: ctx, cancel: cancel}, nil
}

func (s *session) Close() {
	s.cancel()
	if err := s.orch.Close(); err != nil {
		s.logger.Error("Shutdown failed", "error", err.Error())
	}
	s.logger.Sync()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
