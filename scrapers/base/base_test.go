package base

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptAll(*goquery.Document) bool { return true }

func TestFetchDocument_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<html><head><title>Sofa</title></head><body><h1>Sofa</h1></body></html>`))
	}))
	defer srv.Close()

	doc, err := NewBaseScraper(Options{}).FetchDocument(context.Background(), srv.URL, acceptAll)
	require.NoError(t, err)
	assert.Equal(t, "Sofa", doc.Find("h1").Text())
}

func TestFetchDocument_NonSuccessIsUpstreamFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewBaseScraper(Options{}).FetchDocument(context.Background(), srv.URL, acceptAll)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstreamFetch)
	assert.Equal(t, "Scrape failed with status 403", apperr.Message(err))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestIsValidDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><title>Robot Check</title></head><body></body></html>`))
	require.NoError(t, err)
	assert.False(t, IsValidDocument(doc))
}

func TestPortManager(t *testing.T) {
	pm := NewPortManager(5000, 2)
	a, err := pm.GetPort()
	require.NoError(t, err)
	b, err := pm.GetPort()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = pm.GetPort()
	assert.Error(t, err)

	pm.ReleasePort(a)
	c, err := pm.GetPort()
	require.NoError(t, err)
	assert.Equal(t, a, c)
}
