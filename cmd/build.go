package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/config"
	"github.com/cardlens/cardlens/internal/embeddings"
	"github.com/cardlens/cardlens/internal/index"
)

var (
	flagBuildOut     string
	flagBuildWorkers int
)

var buildCmd = &cobra.Command{
	Use:   "build-index [catalog-path]",
	Short: "Build the embedding index from a catalog snapshot",
	Long: `Embed every catalog row's reference image and write a fresh index
generation (manifest, card sequence, vector matrix).

The build is all-or-nothing: artifacts are written into a scratch directory
and installed with an atomic swap, so a failed or interrupted build leaves
the previous index generation untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuildIndex,
}

func init() {
	buildCmd.Flags().StringVar(&flagBuildOut, "out", "", "Index output directory (default <data-dir>/index)")
	buildCmd.Flags().IntVar(&flagBuildWorkers, "workers", 0, "Parallel embedding workers (0 = one per CPU)")
	rootCmd.AddCommand(buildCmd)
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cardlens init' first.", err)
	}

	catalogPath := cfg.CatalogPath()
	if len(args) == 1 {
		catalogPath = args[0]
	}
	outDir := cfg.IndexDir()
	if flagBuildOut != "" {
		outDir = flagBuildOut
	}
	workers := cfg.BuildWorkers
	if flagBuildWorkers > 0 {
		workers = flagBuildWorkers
	}

	cards, err := catalog.ReadFile(catalogPath)
	if err != nil {
		return err
	}

	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("cannot create data dir: %w", err)
	}

	// One build at a time per data dir; a second build would race the swap.
	lock := flock.New(filepath.Join(cfg.DataDir, ".build.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("cannot acquire build lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another build is already running for %s", cfg.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printInfo("", fmt.Sprintf("building index from %s using %s", catalogPath, prov.ModelID()))

	builder := index.NewBuilder(prov, index.BuildOptions{
		Workers: workers,
		Log:     newCommandLogger(),
	})
	ix, report, err := builder.Build(ctx, cards)
	if err != nil {
		if report != nil && report.Total > 0 {
			printErr("", fmt.Sprintf("checked %d rows: %d missing images, %d embedding failures",
				report.Total, report.MissingImage, report.EmbedFailed))
		}
		return fmt.Errorf("index build failed: %w", err)
	}

	tmpBase := filepath.Join(cfg.DataDir, "tmp")
	if err := os.MkdirAll(tmpBase, 0o755); err != nil {
		return fmt.Errorf("cannot create temp dir %s: %w", tmpBase, err)
	}
	tmpDir, err := os.MkdirTemp(tmpBase, "index-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := index.Write(tmpDir, ix); err != nil {
		return fmt.Errorf("cannot write index: %w", err)
	}
	if err := index.AtomicSwap(tmpDir, outDir); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}

	printOK("", fmt.Sprintf("index written: %s (%d cards, dim %d, %s)",
		outDir, ix.Len(), ix.Manifest.Dim, report.Elapsed.Round(time.Millisecond)))
	if report.MissingImage > 0 {
		printWarn("", fmt.Sprintf("%d rows skipped: reference image missing", report.MissingImage))
	}
	if report.EmbedFailed > 0 {
		printWarn("", fmt.Sprintf("%d rows skipped: embedding failed", report.EmbedFailed))
	}
	return nil
}
