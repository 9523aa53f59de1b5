package gallery

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
	"github.com/raushankrgupta/dekor-stager/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *storage.AssetStore, n int) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("stage_%02d", i)
		_, err := store.SaveJSON(context.Background(), storage.CategoryStagingMeta, id, &models.StageRecord{
			ID:             id,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
			OutputImageRef: "/staging/staged/" + id + ".png",
			Generator:      models.GeneratorLocalFallback,
			Confidence:     models.FallbackConfidence,
		})
		require.NoError(t, err)
	}
}

func ids(p *Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.ID)
	}
	return out
}

func TestList_NewestFirstWithTotal(t *testing.T) {
	store := testutil.NewStore(t)
	seed(t, store, 15)
	g := New(store, nil)

	p, err := g.List(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Total)
	assert.Equal(t, 1, p.Page)
	require.Len(t, p.Items, 12)
	assert.Equal(t, "stage_14", p.Items[0].ID)
	assert.Equal(t, "stage_03", p.Items[11].ID)
	assert.Equal(t, p.Items[0].OutputImageRef, p.Items[0].DownloadRef)

	p2, err := g.List(context.Background(), 2, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"stage_02", "stage_01", "stage_00"}, ids(p2))
}

func TestList_Idempotent(t *testing.T) {
	store := testutil.NewStore(t)
	seed(t, store, 5)
	g := New(store, nil)

	a, err := g.List(context.Background(), 1, 12)
	require.NoError(t, err)
	b, err := g.List(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestList_OutOfRangeAndClamping(t *testing.T) {
	store := testutil.NewStore(t)
	seed(t, store, 3)
	g := New(store, nil)

	p, err := g.List(context.Background(), 5, 12)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 3, p.Total)

	for _, huge := range []int{1<<61 + 1, 1<<62 + 1, math.MaxInt} {
		p, err = g.List(context.Background(), huge, 12)
		require.NoError(t, err)
		assert.Empty(t, p.Items, "page %d", huge)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, huge, p.Page)
	}

	p, err = g.List(context.Background(), 0, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Len(t, p.Items, 1)

	p, err = g.List(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, p.Items, 3)
}

func TestList_ClampsToMax(t *testing.T) {
	store := testutil.NewStore(t)
	seed(t, store, 50)

	p, err := New(store, nil).List(context.Background(), 1, 500)
	require.NoError(t, err)
	assert.Len(t, p.Items, MaxPageSize)
	assert.Equal(t, 50, p.Total)
}

func TestList_TiesBreakByID(t *testing.T) {
	store := testutil.NewStore(t)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"stage_b", "stage_c", "stage_a"} {
		_, err := store.SaveJSON(context.Background(), storage.CategoryStagingMeta, id, &models.StageRecord{ID: id, CreatedAt: at})
		require.NoError(t, err)
	}

	p, err := New(store, nil).List(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"stage_c", "stage_b", "stage_a"}, ids(p))
}

func TestList_Empty(t *testing.T) {
	p, err := New(testutil.NewStore(t), nil).List(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Total)
	assert.Empty(t, p.Items)
}
