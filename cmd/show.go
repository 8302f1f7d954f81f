package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/primview/internal/detail"
)

var showCmd = &cobra.Command{
	Use:   "show <primitive_id>",
	Short: "Show the details and asset availability of one primitive",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := loadStore(cfg)
	if err != nil {
		return err
	}
	idx, err := store.FindPrimitive(args[0])
	if err != nil {
		return err
	}
	res, err := newResolver(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	printDetail(detail.Build(ctx, store.At(idx), res))
	return nil
}

func printDetail(d detail.Detail) {
	r := d.Record
	printSection(orNA(r.PrimitiveName))
	fmt.Fprintf(out, "  Primitive: %s\n", orNA(r.PrimitiveID))
	fmt.Fprintf(out, "  Composite: %s (%s)\n", orNA(r.CompositeName), orNA(r.CompositeID))

	printBullet("Assets")
	if r.PrimitiveID == "" {
		printSkip("", "no primitive ID, no assets")
	} else {
		printAvailability("image", d.Image.Path, d.Image.Available)
		printAvailability("model", d.Model.Path, d.Model.Available)
	}

	for _, s := range d.Sections {
		printBullet(s.Title)
		for _, e := range s.Entries {
			fmt.Fprintf(out, "  %s: %s\n", e.Label, e.Value)
		}
	}
}
