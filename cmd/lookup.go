package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/config"
)

var flagLookupK int

var lookupCmd = &cobra.Command{
	Use:   "lookup <terms...>",
	Short: "Search the catalog by card name, set or number",
	Long: `Keyword search over the synced catalog. Matching is case- and
accent-insensitive, so "pokemon" finds "Pokémon"; all terms must match.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().IntVar(&flagLookupK, "k", 10, "Number of results to show")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cardlens init' first.", err)
	}

	records, err := catalog.ReadFile(cfg.CatalogPath())
	if err != nil {
		return fmt.Errorf("%w\nRun 'cardlens sync' first.", err)
	}

	query := strings.Join(args, " ")
	results := catalog.KeywordSearch(records, query, flagLookupK)

	fmt.Printf("\ncardlens lookup %q\n\n", query)
	if len(results) == 0 {
		printMiss("", "no matching cards")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, rec := range results {
		hp := ""
		if rec.HP != nil {
			hp = fmt.Sprintf("HP %d", *rec.HP)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s %s\t%s\n", rec.ID, rec.Name, rec.SetCode, rec.CollectorNumber, hp)
	}
	return w.Flush()
}
