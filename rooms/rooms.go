// Package rooms stores room photographs and describes them for staging.
package rooms

import (
	"context"
	"path"
	"strings"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
)

// DefaultAnalysis is returned for every room until a real analyzer exists.
func DefaultAnalysis() models.RoomAnalysis {
	return models.RoomAnalysis{
		WallColor:  "#F7F4EA",
		FloorColor: "#EBD9D1",
		Palette:    []string{"#F7F4EA", "#EBD9D1", "#A8BBA3"},
		Brightness: 0.6,
		Style:      "contemporary",
		Notes:      "Fallback default values",
	}
}

type Intake struct {
	store *storage.AssetStore
	log   *logger.Logger
}

func NewIntake(store *storage.AssetStore, log *logger.Logger) *Intake {
	return &Intake{store: store, log: logger.OrNop(log).With("service", "RoomIntake")}
}

// Analyze persists the room photo and returns its reference with the default
// analysis. Any non-empty file is accepted; decoding happens at staging time.
func (i *Intake) Analyze(ctx context.Context, upload *models.Upload) (*models.RoomIntake, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, apperr.Validation("Provide a room image file.")
	}

	roomID := storage.NewID("room")
	ref, err := i.store.Save(ctx, storage.CategoryRoom, roomID+roomExt(upload.Filename), upload.Data)
	if err != nil {
		return nil, apperr.Persistence("Failed to store room image.", err)
	}
	i.log.Info("room stored", "room_ref", ref, "bytes", len(upload.Data))

	return &models.RoomIntake{RoomRef: ref, Analysis: DefaultAnalysis()}, nil
}

func roomExt(filename string) string {
	ext := storage.SanitizeFilename(strings.ToLower(path.Ext(strings.TrimSpace(filename))))
	if ext == "" || ext == "." {
		return ".png"
	}
	return ext
}
