package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/config"
	"github.com/cardlens/cardlens/internal/tcgio"
)

var (
	flagSyncQuery    string
	flagSyncPageSize int
	flagSyncLimit    int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the card catalog from the remote card database",
	Long: `Fetch catalog rows and reference images from the card-database API and
write them under the data dir as images/ and cards.csv. Images already on
disk are not re-downloaded, so re-running a sync is cheap.`,
	Args: cobra.NoArgs,
	RunE: runSyncCatalog,
}

func init() {
	syncCmd.Flags().StringVar(&flagSyncQuery, "query", "", "API query, e.g. 'supertype:pokemon set.id:sv3' (default from config)")
	syncCmd.Flags().IntVar(&flagSyncPageSize, "page-size", 0, "Cards per API page (default from config)")
	syncCmd.Flags().IntVar(&flagSyncLimit, "limit", 0, "Max cards to pull (default from config)")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cardlens init' first.", err)
	}

	query := cfg.CatalogQuery
	if flagSyncQuery != "" {
		query = flagSyncQuery
	}
	pageSize := cfg.PageSize
	if flagSyncPageSize > 0 {
		pageSize = flagSyncPageSize
	}
	limit := cfg.SyncLimit
	if flagSyncLimit > 0 {
		limit = flagSyncLimit
	}

	apiKey, err := config.GetConfigValue("CARDLENS_TCG_API_KEY")
	if err != nil {
		return err
	}
	if apiKey == "" {
		printWarn("", "CARDLENS_TCG_API_KEY is not set; the public API rate limit will be low")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.ImagesDir(), 0o755); err != nil {
		return fmt.Errorf("cannot create images dir: %w", err)
	}

	printInfo("", fmt.Sprintf("syncing catalog: query=%q pageSize=%d limit=%d", query, pageSize, limit))

	client := tcgio.NewClient(tcgio.DefaultBaseURL, apiKey)
	records, report, err := client.SyncCatalog(ctx, tcgio.SyncOptions{
		Query:     query,
		PageSize:  pageSize,
		Limit:     limit,
		ImagesDir: cfg.ImagesDir(),
		Log:       newCommandLogger(),
	})
	if err != nil {
		return fmt.Errorf("catalog sync failed: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("catalog sync returned no cards for query %q", query)
	}

	if err := catalog.WriteFile(cfg.CatalogPath(), records); err != nil {
		return err
	}

	printOK("", fmt.Sprintf("%d rows written: %s", report.Rows, cfg.CatalogPath()))
	printInfo("", fmt.Sprintf("images: %d downloaded, %d already on disk", report.Downloaded, report.AlreadyOnDisk))
	if report.DownloadFailed > 0 {
		printWarn("", fmt.Sprintf("%d cards skipped: image download failed", report.DownloadFailed))
	}
	return nil
}

// newCommandLogger returns the logger used by long-running library operations
// invoked from commands.
func newCommandLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
