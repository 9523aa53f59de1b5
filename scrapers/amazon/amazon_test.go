package amazon

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	html := `<html><body>
<span id="productTitle">  Wakefit Sheesham Coffee Table </span>
<div class="priceToPay"><span class="a-offscreen">₹7,499</span></div>
<table id="productDetails_techSpec_section_1">
  <tr><th>Product Dimensions</th><td>&lrm;60D x 90W x 45H Centimeters</td></tr>
  <tr><th>Material</th><td>Sheesham Wood</td></tr>
  <tr><th>Colour</th><td>Honey</td></tr>
</table>
<div id="altImages"><ul>
  <li class="item"><img src="https://m.media-amazon.com/images/I/71abc._AC_US40_.jpg"></li>
  <li class="item"><img src="https://m.media-amazon.com/images/I/81def._AC_US40_.jpg"></li>
</ul></div>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	p := Parse(doc)
	assert.Equal(t, "Wakefit Sheesham Coffee Table", p.Title)
	assert.Equal(t, "₹7,499", p.Price)
	assert.Equal(t, "60D x 90W x 45H Centimeters", p.Dimensions)
	assert.Equal(t, "Sheesham Wood", p.Material)
	assert.Equal(t, "Honey", p.Color)
	assert.Equal(t, []string{
		"https://m.media-amazon.com/images/I/71abc.jpg",
		"https://m.media-amazon.com/images/I/81def.jpg",
	}, p.Images)
}

func TestParse_LandingImagePicksLargest(t *testing.T) {
	html := `<html><body><span id="productTitle">Stool</span>
<img id="landingImage" src="small.jpg" data-a-dynamic-image='{"https://img/a.jpg":[100,100],"https://img/b.jpg":[800,600]}'>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://img/b.jpg"}, Parse(doc).Images)
}

func TestCanScrape(t *testing.T) {
	s := NewAmazonScraper(nil)
	assert.True(t, s.CanScrape("https://www.amazon.in/dp/B0TEST"))
	assert.True(t, s.CanScrape("https://amzn.eu/d/abc"))
	assert.False(t, s.CanScrape("https://www.ikea.com/p/chair"))
}
