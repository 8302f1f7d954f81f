package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/primview/internal/assets"
	"github.com/kamusis/primview/internal/record"
)

var (
	flagCheckLimit   int
	flagCheckWorkers int
	flagManifestRoot string
	flagManifestWait time.Duration
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Inspect and maintain the preview asset tree",
}

var assetsCheckCmd = &cobra.Command{
	Use:   "check [primitive_id...]",
	Short: "Report image and model availability for primitives",
	Long: `Resolve assets/png/<id>.png and assets/stl/<id>.stl for the given IDs,
or for the first --limit records of the dataset when no IDs are given.
The manifest is consulted first; if it is unavailable every file is probed once.`,
	RunE: runAssetsCheck,
}

var assetsManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Regenerate assets/manifest.json from a local assets tree",
	Args:  cobra.NoArgs,
	RunE:  runAssetsManifest,
}

func init() {
	assetsCheckCmd.Flags().IntVar(&flagCheckLimit, "limit", 20, "Records to check when no IDs are given")
	assetsCheckCmd.Flags().IntVar(&flagCheckWorkers, "workers", 8, "Concurrent lookups")
	assetsManifestCmd.Flags().StringVar(&flagManifestRoot, "root", "", "Directory containing assets/ (default assets.dir from config)")
	assetsManifestCmd.Flags().DurationVar(&flagManifestWait, "lock-timeout", 10*time.Second, "How long to wait for another writer")
	assetsCmd.AddCommand(assetsCheckCmd, assetsManifestCmd)
	rootCmd.AddCommand(assetsCmd)
}

func runAssetsCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ids := args
	if len(ids) == 0 {
		store, err := loadStore(cfg)
		if err != nil {
			return err
		}
		ids = firstIDs(store, flagCheckLimit)
	}
	if len(ids) == 0 {
		printSkip("", "nothing to check")
		return nil
	}

	res, err := newResolver(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	found := make(map[assets.Class]map[string]bool, len(assets.Classes))
	for _, c := range assets.Classes {
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = c.FileName(id)
		}
		found[c] = res.CheckAll(ctx, c, names, flagCheckWorkers)
	}

	printSection("Assets")
	for _, id := range ids {
		for _, c := range assets.Classes {
			name := c.FileName(id)
			printAvailability(id, c.Path(name), found[c][name])
		}
	}
	printResolverStats(res.Stats())
	return nil
}

// firstIDs returns up to n distinct, non-empty primitive IDs in store order.
func firstIDs(store *record.Store, n int) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range store.Records() {
		if len(ids) >= n {
			break
		}
		if r.PrimitiveID == "" {
			continue
		}
		if _, dup := seen[r.PrimitiveID]; dup {
			continue
		}
		seen[r.PrimitiveID] = struct{}{}
		ids = append(ids, r.PrimitiveID)
	}
	return ids
}

func printResolverStats(s assets.Stats) {
	printBullet("Resolver")
	switch {
	case !s.ManifestDone:
		printSkip("manifest", "not loaded")
	case s.ManifestFailed:
		printWarn("manifest", "unavailable, fell back to per-file probes")
	default:
		printOK("manifest", fmt.Sprintf("%d images, %d models", s.Manifest[assets.Image], s.Manifest[assets.Model]))
	}
	for _, c := range assets.Classes {
		printInfo(string(c), fmt.Sprintf("cached %d present, %d absent", s.Positive[c], s.Negative[c]))
	}
	printInfo("", fmt.Sprintf("%d probes issued", s.Probes))
}

func runAssetsManifest(_ *cobra.Command, _ []string) error {
	root := flagManifestRoot
	if root == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Assets.Dir == "" {
			return fmt.Errorf("no local assets directory configured\nPass --root or set assets.dir in ~/.primview/primview.yaml.")
		}
		root = cfg.Assets.Dir
	}

	m, err := assets.BuildManifest(root)
	if err != nil {
		return err
	}
	if err := assets.WriteManifest(root, m, flagManifestWait); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("%s written: %d images, %d models", assets.ManifestPath, len(m.PNG), len(m.STL)))
	return nil
}
