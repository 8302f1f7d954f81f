package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kamusis/primview/internal/config"
	"github.com/kamusis/primview/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive terminal browser",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	// stderr belongs to the alternate screen while the browser runs.
	l, err := browseLogger()
	if err != nil {
		return err
	}
	logger = l

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := loadStore(cfg)
	if err != nil {
		return err
	}
	res, err := newResolver(cfg)
	if err != nil {
		return err
	}

	readme, err := os.ReadFile(cfg.Readme)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot read %s: %w", cfg.Readme, err)
	}
	if err != nil {
		logger.Debug("readme not found", zap.String("path", cfg.Readme))
	}

	return tui.Run(cmd.Context(), store, res, tui.Options{
		Limit:    cfg.VisibleLimit,
		Debounce: cfg.Debounce,
		Readme:   string(readme),
		Logger:   logger.Named("tui"),
	})
}

// browseLogger logs to ~/.primview/browse.log with --debug and nowhere
// otherwise.
func browseLogger() (*zap.Logger, error) {
	if !flagDebug {
		return zap.NewNop(), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zcfg.OutputPaths = []string{filepath.Join(dir, "browse.log")}
	zcfg.ErrorOutputPaths = zcfg.OutputPaths
	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l.Named("browse"), nil
}
