package rooms

import (
	"context"
	"image/color"
	"testing"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_StoresRoom(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	room := testutil.SolidPNG(t, 64, 48, color.White)

	res, err := NewIntake(store, nil).Analyze(ctx, &models.Upload{Filename: "living.JPG", Data: room})
	require.NoError(t, err)

	assert.Regexp(t, `^/staging/rooms/room_[0-9a-f-]+\.jpg$`, res.RoomRef)
	assert.Equal(t, DefaultAnalysis(), res.Analysis)

	data, err := store.Read(ctx, res.RoomRef)
	require.NoError(t, err)
	assert.Equal(t, room, data)
}

func TestAnalyze_DefaultsToPNG(t *testing.T) {
	res, err := NewIntake(testutil.NewStore(t), nil).Analyze(context.Background(),
		&models.Upload{Data: testutil.SolidPNG(t, 8, 8, color.Black)})
	require.NoError(t, err)
	assert.Regexp(t, `\.png$`, res.RoomRef)
}

func TestAnalyze_Validation(t *testing.T) {
	intake := NewIntake(testutil.NewStore(t), nil)

	_, err := intake.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = intake.Analyze(context.Background(), &models.Upload{Filename: "room.png"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAnalyze_AcceptsUndecodableFile(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	res, err := NewIntake(store, nil).Analyze(ctx, &models.Upload{Filename: "room.heic", Data: []byte("text")})
	require.NoError(t, err)
	assert.Regexp(t, `^/staging/rooms/room_[0-9a-f-]+\.heic$`, res.RoomRef)
	assert.Equal(t, DefaultAnalysis(), res.Analysis)

	data, err := store.Read(ctx, res.RoomRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("text"), data)
}

func TestDefaultAnalysis(t *testing.T) {
	a := DefaultAnalysis()
	assert.Equal(t, "#F7F4EA", a.WallColor)
	assert.Equal(t, "#EBD9D1", a.FloorColor)
	assert.Equal(t, []string{"#F7F4EA", "#EBD9D1", "#A8BBA3"}, a.Palette)
	assert.Equal(t, 0.6, a.Brightness)
	assert.Equal(t, "contemporary", a.Style)
}
