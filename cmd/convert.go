package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/primview/internal/record"
)

var convertCmd = &cobra.Command{
	Use:   "convert <listing.txt> <dataset.json>",
	Short: "Convert a whitespace-separated primitive listing to dataset JSON",
	Long: `Each line of the listing has the form

  <composite_id> <composite name...> <primitive_id> <primitive name...>

where the primitive ID is the first BP<digits> or FMA<digits> token after
the composite ID. Lines that do not fit are skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(_ *cobra.Command, args []string) error {
	n, err := record.ConvertText(args[0], args[1])
	if err != nil {
		return err
	}
	if n == 0 {
		printWarn("", fmt.Sprintf("no parseable lines in %s", args[0]))
	}
	printOK("", fmt.Sprintf("%d records written to %s", n, args[1]))
	return nil
}
