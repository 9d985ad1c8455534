package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/config"
	"github.com/cardlens/cardlens/internal/embeddings"
	"github.com/cardlens/cardlens/internal/identify"
)

var (
	flagIdentifyTopK     int
	flagIdentifyMinScore float64
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image-path>",
	Short: "Identify a photographed card against the built index",
	Long: `Embed the query image and print the closest catalog cards by cosine
similarity. Low-confidence matches are still matches: the command succeeds
whenever the index loaded and the image embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().IntVar(&flagIdentifyTopK, "top-k", 0, "Number of matches to show (default from config)")
	identifyCmd.Flags().Float64Var(&flagIdentifyMinScore, "min-score", 0, "Hide matches below this similarity")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("cannot read query image %s: %w", imagePath, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cardlens init' first.", err)
	}

	k := cfg.TopK
	if flagIdentifyTopK > 0 {
		k = flagIdentifyTopK
	}
	if k <= 0 {
		k = 5
	}
	minScore := cfg.MinScore
	if cmd.Flags().Changed("min-score") {
		minScore = flagIdentifyMinScore
	}

	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return err
	}

	engine, err := identify.Load(cfg.IndexDir(), prov)
	if err != nil {
		return fmt.Errorf("cannot load index from %s: %w\nRun 'cardlens build-index' first.", cfg.IndexDir(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	matches, err := engine.Identify(ctx, imagePath, k)
	if err != nil {
		return err
	}

	fmt.Printf("\ncardlens identify %s\n\n", imagePath)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	shown := 0
	for i, m := range matches {
		if m.Score < minScore {
			continue
		}
		shown++
		set := m.Card.SetCode
		if m.Card.CollectorNumber != "" {
			set = set + " " + m.Card.CollectorNumber
		}
		fmt.Fprintf(w, "  %d.\t[%.3f]\t%s\t%s\t(%s)\n", i+1, m.Score, m.Card.ID, m.Card.Name, set)
	}
	_ = w.Flush()
	if shown == 0 {
		printMiss("", fmt.Sprintf("no matches above similarity %.3f", minScore))
	}
	return nil
}
