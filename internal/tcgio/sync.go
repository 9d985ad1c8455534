package tcgio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardlens/cardlens/internal/catalog"
)

// SyncOptions controls one catalog synchronization run.
type SyncOptions struct {
	Query     string
	PageSize  int
	Limit     int
	ImagesDir string
	Log       logrus.FieldLogger
}

// SyncReport summarizes a synchronization run.
type SyncReport struct {
	Rows           int
	Downloaded     int
	AlreadyOnDisk  int
	DownloadFailed int
}

// pageDelay keeps the sync gentle on the public API.
const pageDelay = 150 * time.Millisecond

// SyncCatalog walks the card database page by page and returns catalog rows
// with reference images on local disk.
//
// Rows are de-duplicated by id. A card whose image cannot be downloaded is
// skipped and counted, not fatal. Images already present are not re-fetched,
// so re-running a sync is cheap.
func (c *Client) SyncCatalog(ctx context.Context, opts SyncOptions) ([]catalog.CardRecord, *SyncReport, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 200
	}
	if opts.Limit <= 0 {
		opts.Limit = 400
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	report := &SyncReport{}
	seen := make(map[string]struct{})
	var records []catalog.CardRecord

	for page := 1; len(records) < opts.Limit; page++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("sync interrupted: %w", err)
		}

		batch, err := c.Cards(ctx, opts.Query, page, opts.PageSize)
		if err != nil {
			return nil, nil, err
		}
		if len(batch) == 0 {
			break
		}
		log.WithFields(logrus.Fields{"page": page, "cards": len(batch)}).Info("fetched catalog page")

		for _, d := range batch {
			if d.ID == "" {
				continue
			}
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}

			rec, ok := c.fetchOne(ctx, d, opts.ImagesDir, report, log)
			if !ok {
				continue
			}
			records = append(records, rec)
			if len(records) >= opts.Limit {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("sync interrupted: %w", ctx.Err())
		case <-time.After(pageDelay):
		}
	}

	report.Rows = len(records)
	return records, report, nil
}

// fetchOne resolves the local image path for one API card, downloading the
// image if needed.
func (c *Client) fetchOne(ctx context.Context, d Card, imagesDir string, report *SyncReport, log logrus.FieldLogger) (catalog.CardRecord, bool) {
	setID := d.Set.ID
	if setID == "" {
		setID = "unknown"
	}
	base := d.Number
	if base == "" {
		base = d.ID
	}
	local := filepath.Join(imagesDir, setID, base+".jpg")

	imgURL := d.Images.Large
	if imgURL == "" {
		imgURL = d.Images.Small
	}

	if _, err := os.Stat(local); err == nil {
		report.AlreadyOnDisk++
	} else if imgURL != "" {
		if err := c.download(ctx, imgURL, local); err != nil {
			report.DownloadFailed++
			log.WithFields(logrus.Fields{"id": d.ID, "url": imgURL, "error": err}).
				Warn("skipping card: image download failed")
			return catalog.CardRecord{}, false
		}
		report.Downloaded++
	}

	return catalog.CardRecord{
		ID:              d.ID,
		Name:            d.Name,
		SetCode:         setID,
		CollectorNumber: d.Number,
		HP:              catalog.ParseHP(d.HP),
		ImagePath:       local,
	}, true
}
