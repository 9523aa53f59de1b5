package scrapers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/scrapers/amazon"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/raushankrgupta/dekor-stager/scrapers/furniture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noResolve(ctx context.Context, url string) (string, error) { return url, nil }

func TestGetScraper_PicksSiteSpecificFirst(t *testing.T) {
	r := NewRegistry(base.NewBaseScraper(base.Options{}))
	r.resolve = noResolve

	s, _, err := r.GetScraper(context.Background(), "https://www.amazon.in/dp/B0TEST")
	require.NoError(t, err)
	assert.IsType(t, &amazon.AmazonScraper{}, s)

	s, _, err = r.GetScraper(context.Background(), "https://www.ikea.com/p/chair")
	require.NoError(t, err)
	assert.IsType(t, &furniture.FurnitureScraper{}, s)
}

func TestGetScraper_RejectsNonHTTP(t *testing.T) {
	r := NewRegistry(base.NewBaseScraper(base.Options{}))
	_, _, err := r.GetScraper(context.Background(), "file:///etc/passwd")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestScrape_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Arc Floor Lamp"></head><body></body></html>`))
	}))
	defer srv.Close()

	res, err := NewRegistry(base.NewBaseScraper(base.Options{})).Scrape(context.Background(), srv.URL+"/lamp")
	require.NoError(t, err)
	assert.Equal(t, "Arc Floor Lamp", res.Product.Title)
	assert.Equal(t, srv.URL+"/lamp", res.ResolvedURL)
}
