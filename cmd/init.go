package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/primview/internal/config"
)

var (
	flagInitDataset string
	flagInitAssets  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.primview with a default config and credentials template",
	Long: `Create ~/.primview/primview.yaml and ~/.primview/.env.

Existing files are never overwritten. S3 credentials go in .env as
PRIMVIEW_S3_ACCESS_KEY / PRIMVIEW_S3_SECRET_KEY; environment variables of the
same name take precedence.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitDataset, "with-dataset", "", "Dataset path to record in the new config")
	initCmd.Flags().StringVar(&flagInitAssets, "with-assets", "", "Assets directory or base URL to record in the new config")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 1. ~/.primview ────────────────────────────────────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("primview directory ready: %s", dir))

	// ── 2. primview.yaml ──────────────────────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if flagInitDataset != "" {
			cfg.Dataset = flagInitDataset
		}
		if flagInitAssets != "" {
			if isURL(flagInitAssets) {
				cfg.Assets = config.Assets{BaseURL: flagInitAssets}
			} else {
				cfg.Assets = config.Assets{Dir: flagInitAssets}
			}
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ──────────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Credentials file ready: %s", envPath))
	return nil
}
