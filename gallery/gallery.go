// Package gallery lists finished staging results, newest first.
package gallery

import (
	"context"
	"sort"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

// Page is one slice of the gallery. Total counts every record.
type Page struct {
	Items []models.GalleryItem `json:"items"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
}

type Gallery struct {
	store *storage.AssetStore
	log   *logger.Logger
}

func New(store *storage.AssetStore, log *logger.Logger) *Gallery {
	return &Gallery{store: store, log: logger.OrNop(log).With("service", "GalleryQuery")}
}

// List returns the requested page. page < 1 is treated as 1; pageSize is
// clamped to [1, MaxPageSize] with 0 meaning DefaultPageSize.
func (g *Gallery) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	refs, err := g.store.List(ctx, storage.CategoryStagingMeta)
	if err != nil {
		return nil, apperr.Persistence("Failed to list gallery.", err)
	}

	records := make([]models.StageRecord, 0, len(refs))
	for _, ref := range refs {
		var rec models.StageRecord
		if err := g.store.ReadJSONRef(ctx, ref, &rec); err != nil {
			g.log.Warn("skipping unreadable stage record", "ref", ref, "error", err)
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	result := &Page{Items: []models.GalleryItem{}, Total: len(records), Page: page}
	// compare page counts first so (page-1)*pageSize cannot overflow
	pages := (len(records) + pageSize - 1) / pageSize
	if page-1 >= pages {
		return result, nil
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	for _, rec := range records[start:end] {
		result.Items = append(result.Items, models.GalleryItem{
			StageRecord: rec,
			DownloadRef: g.store.DownloadURL(ctx, rec.OutputImageRef),
		})
	}
	return result, nil
}
