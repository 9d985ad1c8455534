package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/config"
	"github.com/cardlens/cardlens/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog and index health",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cardlens init' first.", err)
	}

	printSection("Catalog")
	records, err := catalog.ReadFile(cfg.CatalogPath())
	switch {
	case err == nil:
		printOK("", fmt.Sprintf("%d rows: %s", len(records), cfg.CatalogPath()))
		missing := 0
		for _, rec := range records {
			if _, err := os.Stat(rec.ImagePath); err != nil {
				missing++
			}
		}
		if missing > 0 {
			printWarn("", fmt.Sprintf("%d rows point at missing images (they will be skipped at build)", missing))
		}
	case errors.Is(err, fs.ErrNotExist):
		printMiss("", fmt.Sprintf("no catalog at %s — run 'cardlens sync'", cfg.CatalogPath()))
	default:
		printErr("", err.Error())
	}

	printSection("Index")
	ix, err := index.Load(cfg.IndexDir())
	if err != nil {
		printMiss("", fmt.Sprintf("no loadable index at %s — run 'cardlens build-index' (%v)", cfg.IndexDir(), err))
		return nil
	}
	m := ix.Manifest
	printOK("", fmt.Sprintf("%d cards, dim %d, model %s", m.Count, m.Dim, m.ModelID))
	printInfo("", fmt.Sprintf("built %s (generation v%d)", m.CreatedAt, m.IndexVersion))
	return nil
}
