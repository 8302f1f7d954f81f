package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kamusis/primview/internal/assets"
	"github.com/kamusis/primview/internal/config"
	"github.com/kamusis/primview/internal/record"
)

var (
	flagConfig  string
	flagDataset string
	flagAssets  string
	flagDebug   bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:          "primview",
	Short:        "primview - search and inspect anatomical primitives",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `primview searches an anatomical primitive dataset with a small query
language (terms, p_fma/c_fma/name filters, /regex/flags) and reports which
preview images and 3D models are available for each primitive.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		zcfg := zap.NewProductionConfig()
		if flagDebug {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Named(cmd.Name())
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.primview/primview.yaml)")
	pf.StringVar(&flagDataset, "dataset", "", "Dataset JSON file (overrides config)")
	pf.StringVar(&flagAssets, "assets", "", "Assets root: a directory or an http(s) base URL (overrides config)")
	pf.BoolVar(&flagDebug, "debug", false, "Print debug diagnostics")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		p, perr := config.ExpandPath(flagConfig)
		if perr != nil {
			return nil, perr
		}
		cfg, err = config.LoadFrom(p)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}

	if flagDataset != "" {
		cfg.Dataset = flagDataset
	}
	if flagAssets != "" {
		cfg.Assets.S3 = nil
		if isURL(flagAssets) {
			cfg.Assets.BaseURL, cfg.Assets.Dir = flagAssets, ""
		} else {
			cfg.Assets.BaseURL, cfg.Assets.Dir = "", flagAssets
		}
	}
	return cfg, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// loadStore loads and priority-sorts the dataset named by cfg.
func loadStore(cfg *config.Config) (*record.Store, error) {
	start := time.Now()
	store, err := record.Load(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("%w\nPass --dataset or set 'dataset' in ~/.primview/primview.yaml.", err)
	}
	store.PrioritySort()
	logger.Debug("dataset loaded",
		zap.String("path", cfg.Dataset),
		zap.Int("records", store.Len()),
		zap.Duration("took", time.Since(start)))
	return store, nil
}

// newSource picks the asset transport: S3, then base URL, then directory.
func newSource(cfg *config.Config) (assets.Source, error) {
	a := cfg.Assets
	switch {
	case a.S3 != nil && a.S3.Bucket != "":
		creds, err := config.S3Credentials()
		if err != nil {
			return nil, err
		}
		logger.Debug("using s3 assets", zap.String("endpoint", a.S3.Endpoint), zap.String("bucket", a.S3.Bucket))
		return assets.NewMinioSource(assets.S3Options{
			Endpoint:  a.S3.Endpoint,
			Bucket:    a.S3.Bucket,
			Prefix:    a.S3.Prefix,
			Region:    a.S3.Region,
			AccessKey: creds.AccessKey,
			SecretKey: creds.SecretKey,
			Secure:    a.S3.Secure,
		})
	case a.BaseURL != "":
		logger.Debug("using http assets", zap.String("base_url", a.BaseURL))
		return assets.NewHTTPSource(a.BaseURL, assets.HTTPOptions{ProbeRate: a.ProbeRate}), nil
	default:
		dir := a.Dir
		if dir == "" {
			dir = "."
		}
		logger.Debug("using local assets", zap.String("dir", dir))
		return assets.NewDirSource(dir), nil
	}
}

// newResolver builds the process-wide resolver for cfg.
func newResolver(cfg *config.Config) (*assets.Resolver, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	return assets.NewResolver(src, assets.WithLogger(logger.Named("assets"))), nil
}
