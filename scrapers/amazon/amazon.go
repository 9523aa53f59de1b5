package amazon

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
)

var (
	// thumbnail suffixes look like ._AC_US40_.jpg
	reThumbSuffix = regexp.MustCompile(`\._[^/]+_\.`)
	rePrice       = regexp.MustCompile(`(₹|Rs\.?|\$|€|£)\s?[\d,]+(\.\d{2})?`)
)

// AmazonScraper handles the HTML parsing for Amazon furniture listings
type AmazonScraper struct {
	*base.BaseScraper
}

func NewAmazonScraper(b *base.BaseScraper) *AmazonScraper {
	return &AmazonScraper{BaseScraper: b}
}

func (s *AmazonScraper) CanScrape(url string) bool {
	return strings.Contains(url, "amazon.") || strings.Contains(url, "amzn.")
}

func (s *AmazonScraper) ScrapeProduct(ctx context.Context, url string) (*models.ScrapedProduct, error) {
	doc, err := s.FetchDocument(ctx, url, func(doc *goquery.Document) bool {
		return strings.TrimSpace(doc.Find("#productTitle").Text()) != ""
	})
	if err != nil {
		return nil, err
	}
	return Parse(doc), nil
}

// Parse extracts a furniture listing from an Amazon product page.
func Parse(doc *goquery.Document) *models.ScrapedProduct {
	product := &models.ScrapedProduct{
		Title: strings.TrimSpace(doc.Find("#productTitle").Text()),
		Price: price(doc),
	}
	if product.Title == "" {
		product.Title = "Untitled Furniture"
	}

	// Technical details table, then the newer product facts block
	doc.Find("#productDetails_techSpec_section_1 tr, #productOverview_feature_div tr").Each(func(i int, s *goquery.Selection) {
		key := strings.TrimSpace(s.Find("th, td.a-span3").First().Text())
		val := strings.TrimSpace(s.Find("td").Last().Text())
		assignDetail(product, key, val)
	})
	doc.Find(".product-facts-detail").Each(func(i int, s *goquery.Selection) {
		key := strings.TrimSpace(s.Find(".a-col-left span").First().Text())
		val := strings.TrimSpace(s.Find(".a-col-right span").First().Text())
		assignDetail(product, key, val)
	})

	if product.Dimensions != "" {
		product.Dimensions = strings.ReplaceAll(product.Dimensions, "\u200e", "")
		product.Dimensions = strings.Join(strings.Fields(product.Dimensions), " ")
	}

	product.Images = images(doc)
	return product
}

func assignDetail(product *models.ScrapedProduct, key, val string) {
	if val == "" {
		return
	}
	switch {
	case strings.Contains(key, "Dimensions") && product.Dimensions == "":
		product.Dimensions = val
	case (strings.Contains(key, "Material") || strings.Contains(key, "Upholstery")) && product.Material == "":
		product.Material = val
	case (strings.Contains(key, "Colour") || strings.Contains(key, "Color")) && product.Color == "":
		product.Color = val
	}
}

func price(doc *goquery.Document) string {
	candidates := []string{
		".priceToPay .a-offscreen",
		"#corePriceDisplay_desktop_feature_div .a-price.apexPriceToPay .a-offscreen",
		"#priceblock_dealprice",
		"#priceblock_ourprice",
		".a-price .a-offscreen",
	}
	for _, sel := range candidates {
		if p := strings.TrimSpace(doc.Find(sel).First().Text()); p != "" {
			return p
		}
	}
	if whole := strings.TrimSpace(doc.Find(".priceToPay .a-price-whole").First().Text()); whole != "" {
		return strings.TrimSpace(doc.Find(".priceToPay .a-price-symbol").First().Text()) + strings.TrimSuffix(whole, ".")
	}
	return rePrice.FindString(doc.Find("#centerCol, #ppd").Text())
}

// images prefers the alternate view thumbnails upgraded to full size, then
// the landing image's dynamic image map.
func images(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var found []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		found = append(found, u)
	}

	doc.Find("#altImages ul li.item img").Each(func(i int, s *goquery.Selection) {
		if src := s.AttrOr("src", ""); src != "" {
			add(reThumbSuffix.ReplaceAllString(src, "."))
		}
	})
	if len(found) > 0 {
		return found
	}

	dynamic := doc.Find("#landingImage").AttrOr("data-a-dynamic-image", "")
	if dynamic == "" {
		dynamic = doc.Find("#imgBlkFront").AttrOr("data-a-dynamic-image", "")
	}
	if dynamic != "" {
		var sizes map[string][]int
		if err := json.Unmarshal([]byte(dynamic), &sizes); err == nil {
			// largest rendition first
			urls := make([]string, 0, len(sizes))
			for u := range sizes {
				urls = append(urls, u)
			}
			sort.Slice(urls, func(i, j int) bool { return area(sizes[urls[i]]) > area(sizes[urls[j]]) })
			if len(urls) > 0 {
				add(urls[0])
			}
		}
	}
	if len(found) == 0 {
		add(doc.Find("#landingImage").AttrOr("src", ""))
	}
	return found
}

func area(dims []int) int {
	if len(dims) < 2 {
		return 0
	}
	return dims[0] * dims[1]
}
