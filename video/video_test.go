package video

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/generator"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
	"github.com/raushankrgupta/dekor-stager/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideos struct {
	result *generator.VideoResult
	err    error
	calls  int
	last   generator.VideoRequest
}

func (f *fakeVideos) ImageToVideo(ctx context.Context, req generator.VideoRequest) (*generator.VideoResult, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

func seedSource(t *testing.T, store *storage.AssetStore) string {
	ref, err := store.Save(context.Background(), storage.CategoryStagingOutput, "staged_x.png", testutil.SolidPNG(t, 16, 9, color.White))
	require.NoError(t, err)
	return ref
}

func TestRequestValidate(t *testing.T) {
	r := Request{Prompt: "  pan left ", SourceImageRef: "/staging/staged/a.png"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "pan left", r.Prompt)
	assert.Equal(t, models.AspectAuto, r.AspectRatio)
	assert.Equal(t, models.Resolution720p, r.Resolution)
	assert.Equal(t, "8s", r.Duration)

	bad := []Request{
		{Prompt: " ", SourceImageRef: "/x"},
		{Prompt: "p"},
		{Prompt: "p", SourceImageRef: "/x", AspectRatio: "4:3"},
		{Prompt: "p", SourceImageRef: "/x", Resolution: "4k"},
		{Prompt: "p", SourceImageRef: "/x", Duration: "5s"},
	}
	for _, b := range bad {
		assert.ErrorIs(t, b.Validate(), apperr.ErrValidation)
	}
}

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mp4-bytes"))
	}))
	defer srv.Close()

	store := testutil.NewStore(t)
	src := seedSource(t, store)
	videos := &fakeVideos{result: &generator.VideoResult{Video: generator.Output{URL: srv.URL + "/v.mp4"}}}
	svc := NewService(store, videos, srv.Client(), 0, nil)

	job, err := svc.Generate(context.Background(), Request{Prompt: "slow dolly in", SourceImageRef: src, AspectRatio: models.AspectLandscape, GenerateAudio: true})
	require.NoError(t, err)

	assert.Equal(t, 1, videos.calls)
	assert.Equal(t, "8s", videos.last.Duration)
	assert.Equal(t, models.AspectLandscape, job.AspectRatio)
	assert.True(t, job.GenerateAudio)
	assert.Regexp(t, `^/videos/output/video_.+\.mp4$`, job.OutputVideoRef)

	data, err := store.Read(context.Background(), job.OutputVideoRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp4-bytes"), data)

	var stored models.VideoJob
	require.NoError(t, store.ReadJSON(context.Background(), storage.CategoryVideoMeta, job.ID, &stored))
	assert.Equal(t, job.OutputVideoRef, stored.OutputVideoRef)
}

func TestGenerate_FailureIsTerminal(t *testing.T) {
	store := testutil.NewStore(t)
	src := seedSource(t, store)
	videos := &fakeVideos{err: errors.New("quota exceeded")}

	_, err := NewService(store, videos, nil, 0, nil).Generate(context.Background(), Request{Prompt: "p", SourceImageRef: src})
	assert.ErrorIs(t, err, apperr.ErrRemoteUnavailable)
	assert.Equal(t, 1, videos.calls)

	refs, err := store.List(context.Background(), storage.CategoryVideoMeta)
	require.NoError(t, err)
	assert.Empty(t, refs)
	outputs, err := store.List(context.Background(), storage.CategoryVideoOutput)
	require.NoError(t, err)
	assert.Empty(t, outputs)
}

func TestGenerate_NoProvider(t *testing.T) {
	store := testutil.NewStore(t)
	src := seedSource(t, store)

	_, err := NewService(store, nil, nil, 0, nil).Generate(context.Background(), Request{Prompt: "p", SourceImageRef: src})
	assert.ErrorIs(t, err, apperr.ErrRemoteUnavailable)
}

func TestGenerate_MissingSource(t *testing.T) {
	videos := &fakeVideos{}
	_, err := NewService(testutil.NewStore(t), videos, nil, 0, nil).Generate(context.Background(),
		Request{Prompt: "p", SourceImageRef: "/staging/staged/missing.png"})
	assert.ErrorIs(t, err, apperr.ErrMissingAsset)
	assert.Equal(t, 0, videos.calls)
}

func TestUploadSource(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewService(store, nil, nil, 0, nil)

	src, err := svc.UploadSource(context.Background(), &models.Upload{
		Filename: "living room.jpg",
		Data:     testutil.SolidPNG(t, 12, 12, color.Black),
	})
	require.NoError(t, err)
	assert.Equal(t, "living room.jpg", src.OriginalFilename)
	assert.Regexp(t, `^/videos/input/living_room-videoimg_[0-9a-f-]+\.png$`, src.ImageRef)

	refs, err := store.List(context.Background(), storage.CategoryVideoInput)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = svc.UploadSource(context.Background(), &models.Upload{Filename: "x.png"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
