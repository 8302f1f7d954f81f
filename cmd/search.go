package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamusis/primview/internal/query"
	"github.com/kamusis/primview/internal/record"
	"github.com/kamusis/primview/internal/selection"
)

var flagSearchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Filter primitives by terms, structured filters or /regex/",
	Long: `Filter the dataset with the primview query language.

  femur head                 every term is a substring of the name
  p_fma=FMA9611              exact primitive ID
  c_fma^=FMA72 name*=neck    prefix / substring filters
  "name:greater trochanter"  quoted tokens keep spaces
  /^left .*rib$/i            regular expression over the name`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 0, "Maximum rows to print (default visible_limit from config)")
	rootCmd.AddCommand(searchCmd)
}

var markStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func runSearch(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := loadStore(cfg)
	if err != nil {
		return err
	}

	limit := cfg.VisibleLimit
	if flagSearchLimit > 0 {
		limit = flagSearchLimit
	}

	raw := strings.Join(args, " ")
	q := query.Parse(raw)
	logger.Debug("query parsed", zap.String("raw", raw), zap.Stringer("canonical", q))

	view, terms := query.Evaluate(q, store)
	ctl := selection.New(view, limit)
	printSearchResults(store, ctl, terms)
	return nil
}

func printSearchResults(store *record.Store, ctl *selection.Controller, terms []string) {
	fmt.Fprintf(out, "%s\n", ctl.Meta())
	rows := ctl.Visible()
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, idx := range rows {
		r := store.At(idx)
		name := query.Highlight(r.PrimitiveName, terms, func(s string) string { return markStyle.Render(s) })
		fmt.Fprintf(w, "  %d.\t%s\t%s\t%s\n", i+1, r.PrimitiveID, name, r.CompositeName)
	}
	_ = w.Flush()
}
