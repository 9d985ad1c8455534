package index

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/embeddings"
)

// BuildOptions controls index building.
type BuildOptions struct {
	// Workers bounds the parallel embedding fan-out. Zero means NumCPU.
	Workers int
	// Log receives one entry per skipped record.
	Log logrus.FieldLogger
}

// BuildReport summarizes one build: how many catalog rows were seen and what
// happened to each. MissingImage and EmbedFailed count skipped rows.
type BuildReport struct {
	Total        int
	Embedded     int
	MissingImage int
	EmbedFailed  int
	Elapsed      time.Duration
}

// Builder turns a catalog snapshot into an index.
type Builder struct {
	prov    embeddings.Provider
	workers int
	log     logrus.FieldLogger
}

// NewBuilder returns a builder that embeds reference images with prov.
func NewBuilder(prov embeddings.Provider, opts BuildOptions) *Builder {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{prov: prov, workers: workers, log: log}
}

// result of embedding one catalog row, kept positional so catalog order
// survives the parallel fan-out.
type buildSlot struct {
	vec          []float32
	missingImage bool
	embedFailed  bool
}

// Build embeds every catalog record with a readable reference image and
// assembles the index in catalog order.
//
// A row with a missing image or a failed embedding is skipped, logged and
// counted; the build only fails outright when nothing usable remains
// (ErrEmptyCatalog) or the provider changes dimension mid-run. Cancelling ctx
// stops new embedding work, lets in-flight work finish and returns ctx's
// error without producing an index.
func (b *Builder) Build(ctx context.Context, cards []catalog.CardRecord) (*Index, *BuildReport, error) {
	start := time.Now()
	report := &BuildReport{Total: len(cards)}
	if len(cards) == 0 {
		return nil, report, ErrEmptyCatalog
	}

	slots := make([]buildSlot, len(cards))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				b.embedOne(ctx, cards[i], &slots[i])
			}
		}()
	}

feed:
	for i := range cards {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, report, fmt.Errorf("build interrupted: %w", err)
	}

	kept := make([]catalog.CardRecord, 0, len(cards))
	vectors := make([][]float32, 0, len(cards))
	for i, s := range slots {
		switch {
		case s.missingImage:
			report.MissingImage++
		case s.embedFailed:
			report.EmbedFailed++
		default:
			kept = append(kept, cards[i])
			vectors = append(vectors, s.vec)
			report.Embedded++
		}
	}
	report.Elapsed = time.Since(start)

	if len(kept) == 0 {
		return nil, report, fmt.Errorf("%w (checked %d rows)", ErrEmptyCatalog, report.Total)
	}

	ix, err := New(b.prov.ModelID(), kept, vectors)
	if err != nil {
		return nil, report, err
	}
	return ix, report, nil
}

func (b *Builder) embedOne(ctx context.Context, rec catalog.CardRecord, slot *buildSlot) {
	if _, err := os.Stat(rec.ImagePath); err != nil {
		slot.missingImage = true
		b.log.WithFields(logrus.Fields{"id": rec.ID, "path": rec.ImagePath}).
			Warn("skipping card: reference image not found")
		return
	}

	vec, err := b.prov.Embed(ctx, rec.ImagePath)
	if err != nil {
		slot.embedFailed = true
		b.log.WithFields(logrus.Fields{"id": rec.ID, "path": rec.ImagePath, "error": err}).
			Warn("skipping card: embedding failed")
		return
	}
	slot.vec = NormalizeL2(vec)
}
