package furniture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><head>
<meta property="og:title" content=" Oslo Lounge Chair ">
<meta property="og:image" content="/img/oslo-1.jpg">
<meta itemprop="price" content="349.00">
</head><body>
<h1>Ignored heading</h1>
<span class="color">Sage green</span>
<div itemprop="material">Oak, linen</div>
<p data-dimensions>80 x 75 x 90 cm</p>
<img src="/img/oslo-1.jpg">
<img src="https://cdn.example.com/oslo-2.jpg">
<img src="">
</body></html>`

func parse(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	p := Parse(parse(t, productPage), "https://shop.example.com/p/oslo")

	assert.Equal(t, "Oslo Lounge Chair", p.Title)
	assert.Equal(t, "349.00", p.Price)
	assert.Equal(t, "Sage green", p.Color)
	assert.Equal(t, "Oak, linen", p.Material)
	assert.Equal(t, "80 x 75 x 90 cm", p.Dimensions)
	assert.Equal(t, []string{
		"https://shop.example.com/img/oslo-1.jpg",
		"https://cdn.example.com/oslo-2.jpg",
	}, p.Images)
}

func TestParse_TitleFallbacks(t *testing.T) {
	p := Parse(parse(t, `<html><body><h1> Side Table </h1><h1>Second</h1></body></html>`), "https://x.example")
	assert.Equal(t, "Side Table", p.Title)
	assert.Empty(t, p.Images)

	p = Parse(parse(t, `<html><body><p>nothing</p></body></html>`), "https://x.example")
	assert.Equal(t, "Untitled Furniture", p.Title)
}

func TestParse_DimensionsFromMeta(t *testing.T) {
	p := Parse(parse(t, `<html><head><meta itemprop="size" content="120cm"></head><body></body></html>`), "https://x.example")
	assert.Equal(t, "120cm", p.Dimensions)
}

func TestScrapeProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := NewFurnitureScraper(base.NewBaseScraper(base.Options{}))
	assert.True(t, s.CanScrape(srv.URL))
	assert.False(t, s.CanScrape("mailto:a@b.c"))

	p, err := s.ScrapeProduct(context.Background(), srv.URL+"/p/oslo")
	require.NoError(t, err)
	assert.Equal(t, "Oslo Lounge Chair", p.Title)
	assert.Equal(t, srv.URL+"/img/oslo-1.jpg", p.Images[0])
}
