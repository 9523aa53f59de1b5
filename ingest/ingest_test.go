package ingest

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/compositor"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/scrapers"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/raushankrgupta/dekor-stager/storage"
	"github.com/raushankrgupta/dekor-stager/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	result *scrapers.Result
	err    error
	calls  int
}

func (f *fakeScraper) Scrape(ctx context.Context, url string) (*scrapers.Result, error) {
	f.calls++
	return f.result, f.err
}

func imageServer(t *testing.T) *httptest.Server {
	png := testutil.SolidPNG(t, 40, 30, color.RGBA{200, 10, 10, 255})
	mux := http.NewServeMux()
	mux.HandleFunc("/img/ok.png", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(png) })
	mux.HandleFunc("/img/ok2", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(png) })
	mux.HandleFunc("/img/broken.jpg", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })
	mux.HandleFunc("/img/html.jpg", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html></html>")) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIngest_RequiresURLOrFile(t *testing.T) {
	scraper := &fakeScraper{}
	store := testutil.NewStore(t)
	r := NewResolver(store, scraper, nil, nil)

	_, err := r.Ingest(context.Background(), Request{URL: "  ", File: &models.Upload{Filename: "a.png"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 0, scraper.calls)

	refs, err := store.List(context.Background(), storage.CategoryProductMeta)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestIngest_Upload(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	r := NewResolver(store, &fakeScraper{}, nil, nil)

	p, err := r.Ingest(ctx, Request{File: &models.Upload{
		Filename: "My Fancy File!.png",
		Data:     testutil.SolidPNG(t, 100, 100, color.White),
	}})
	require.NoError(t, err)

	assert.Equal(t, models.SourceUpload, p.Source)
	assert.Equal(t, "My Fancy File!.png", p.Title)
	require.Len(t, p.Images, 1)
	img := p.Images[0]
	assert.Equal(t, 0.8, img.Confidence)
	assert.True(t, img.BackgroundRemoved)
	assert.Equal(t, "/products/processed/"+p.ID+"/"+img.ID+".png", img.ProcessedRef)
	assert.Equal(t, "/products/original/"+p.ID+"/"+img.ID+"-My_Fancy_File_.png", img.OriginalRef)

	data, err := store.Read(ctx, img.ProcessedRef)
	require.NoError(t, err)
	w, h, err := compositor.Dimensions(data)
	require.NoError(t, err)
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)

	stored, err := Product(ctx, store, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Images, stored.Images)
}

func TestIngest_URLSkipsFailedImages(t *testing.T) {
	srv := imageServer(t)
	scraper := &fakeScraper{result: &scrapers.Result{
		ResolvedURL: srv.URL + "/p/chair",
		Product: &models.ScrapedProduct{
			Title:    "Oslo Chair",
			Material: "Oak",
			Images: []string{
				srv.URL + "/img/ok.png",
				srv.URL + "/img/broken.jpg",
				srv.URL + "/img/html.jpg",
				srv.URL + "/img/ok2",
				srv.URL + "/img/never-fetched.png",
			},
		},
	}}
	r := NewResolver(testutil.NewStore(t), scraper, srv.Client(), nil)

	p, err := r.Ingest(context.Background(), Request{URL: srv.URL + "/p/chair"})
	require.NoError(t, err)

	assert.Equal(t, models.SourceURL, p.Source)
	assert.Equal(t, "Oslo Chair", p.Title)
	assert.Equal(t, "Oak", p.Material)
	require.Len(t, p.Images, 2)
	for _, img := range p.Images {
		assert.Equal(t, 0.85, img.Confidence)
		assert.NotEmpty(t, img.ProcessedRef)
	}
	assert.Regexp(t, `\.png$`, p.Images[0].OriginalRef)
	assert.Regexp(t, `\.jpg$`, p.Images[1].OriginalRef)
}

func TestIngest_URLAndUploadCombined(t *testing.T) {
	srv := imageServer(t)
	scraper := &fakeScraper{result: &scrapers.Result{Product: &models.ScrapedProduct{
		Title:  "Lamp",
		Images: []string{srv.URL + "/img/ok.png"},
	}}}
	r := NewResolver(testutil.NewStore(t), scraper, srv.Client(), nil)

	p, err := r.Ingest(context.Background(), Request{
		URL:  srv.URL + "/p/lamp",
		File: &models.Upload{Data: testutil.SolidPNG(t, 10, 10, color.Black)},
	})
	require.NoError(t, err)
	require.Len(t, p.Images, 2)
	assert.Equal(t, 0.85, p.Images[0].Confidence)
	assert.Equal(t, 0.8, p.Images[1].Confidence)
	assert.Contains(t, p.Images[1].OriginalRef, "-upload")
}

func TestIngest_NoUsableImages(t *testing.T) {
	srv := imageServer(t)
	scraper := &fakeScraper{result: &scrapers.Result{Product: &models.ScrapedProduct{
		Title:  "Ghost",
		Images: []string{srv.URL + "/img/broken.jpg"},
	}}}
	store := testutil.NewStore(t)
	r := NewResolver(store, scraper, srv.Client(), nil)

	_, err := r.Ingest(context.Background(), Request{URL: srv.URL + "/p/ghost"})
	assert.ErrorIs(t, err, apperr.ErrNoUsableImages)
	assert.Equal(t, 422, apperr.HTTPStatus(apperr.KindOf(err)))

	refs, err := store.List(context.Background(), storage.CategoryProductMeta)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestIngest_UpstreamFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	registry := scrapers.NewRegistry(base.NewBaseScraper(base.Options{}))
	r := NewResolver(testutil.NewStore(t), registry, srv.Client(), nil)

	_, err := r.Ingest(context.Background(), Request{URL: srv.URL + "/p/gone"})
	assert.ErrorIs(t, err, apperr.ErrUpstreamFetch)
}

func TestIngest_ScrapeFailureFallsBackToUpload(t *testing.T) {
	store := testutil.NewStore(t)
	scraper := &fakeScraper{err: apperr.UpstreamFetch("Scrape failed with status 503", nil)}
	r := NewResolver(store, scraper, nil, nil)

	p, err := r.Ingest(context.Background(), Request{
		URL:  "https://shop.example.com/p/sofa",
		File: &models.Upload{Filename: "sofa.png", Data: testutil.SolidPNG(t, 12, 12, color.White)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, scraper.calls)
	require.Len(t, p.Images, 1)
	assert.Equal(t, 0.8, p.Images[0].Confidence)
	assert.Equal(t, "sofa.png", p.Title)
	assert.Equal(t, models.SourceURL, p.Source)

	refs, err := store.List(context.Background(), storage.CategoryProductMeta)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

func TestIngest_ScrapeFailureWithoutUpload(t *testing.T) {
	scraper := &fakeScraper{err: apperr.UpstreamFetch("Scrape failed with status 503", nil)}
	r := NewResolver(testutil.NewStore(t), scraper, nil, nil)

	_, err := r.Ingest(context.Background(), Request{URL: "https://shop.example.com/p/sofa"})
	assert.ErrorIs(t, err, apperr.ErrUpstreamFetch)
	assert.Equal(t, "Scrape failed with status 503", apperr.Message(err))
}

func TestExtFromURL(t *testing.T) {
	assert.Equal(t, ".webp", extFromURL("https://cdn.example.com/a/b.webp?w=800"))
	assert.Equal(t, ".jpg", extFromURL("https://cdn.example.com/a/b"))
}
