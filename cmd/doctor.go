package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/primview/internal/config"
	"github.com/kamusis/primview/internal/record"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight checks on config, dataset and assets",
	Long: `Check that the config parses, the dataset loads and the asset source
answers. Run this when results or previews look wrong.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("primview doctor")

	// ── Check 1: config ───────────────────────────────────────────────────────
	fmt.Fprintln(out, "\n[ config ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printSkip("", fmt.Sprintf("%s not found, using defaults (run 'primview init')", cfgPath))
	}
	cfg, err := loadConfig()
	if err != nil {
		failD("%v", err)
		return fmt.Errorf("doctor found problems")
	}
	printOK("", fmt.Sprintf("dataset=%s limit=%d debounce=%s", cfg.Dataset, cfg.VisibleLimit, cfg.Debounce))

	// ── Check 2: dataset ──────────────────────────────────────────────────────
	fmt.Fprintln(out, "\n[ dataset ]")
	if store, err := loadStore(cfg); err != nil {
		failD("%v", err)
	} else {
		var priority, noID int
		for _, r := range store.Records() {
			if record.IsPriority(r) {
				priority++
			}
			if r.PrimitiveID == "" {
				noID++
			}
		}
		printOK("", fmt.Sprintf("%d records, %d bone/vertebrae/tooth first", store.Len(), priority))
		if noID > 0 {
			printWarn("", fmt.Sprintf("%d records without primitive_id have no previews", noID))
		}
	}

	// ── Check 3: README ───────────────────────────────────────────────────────
	fmt.Fprintln(out, "\n[ README ]")
	if _, err := os.Stat(cfg.Readme); err != nil {
		printMiss("", fmt.Sprintf("%s not found, the pinned entry will be blank", cfg.Readme))
	} else {
		printOK("", cfg.Readme)
	}

	// ── Check 4: asset source ─────────────────────────────────────────────────
	fmt.Fprintln(out, "\n[ assets ]")
	if s3 := cfg.Assets.S3; s3 != nil && s3.Bucket != "" {
		creds, err := config.S3Credentials()
		switch {
		case err != nil:
			failD("cannot read credentials: %v", err)
		case creds.Anonymous():
			printWarn("", fmt.Sprintf("%s / %s not set, using anonymous access", config.EnvS3AccessKey, config.EnvS3SecretKey))
		default:
			printOK("", "S3 credentials present")
		}
	}
	res, err := newResolver(cfg)
	if err != nil {
		failD("%v", err)
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		res.Warm(ctx)
		printResolverStats(res.Stats())
	}

	fmt.Fprintln(out)
	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	printOK("", "all checks passed")
	return nil
}
