// Package furniture extracts product metadata from arbitrary furniture shop
// pages using Open Graph and schema.org microdata.
package furniture

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/raushankrgupta/dekor-stager/utils"
)

const untitled = "Untitled Furniture"

// FurnitureScraper handles any http(s) product page
type FurnitureScraper struct {
	*base.BaseScraper
}

func NewFurnitureScraper(b *base.BaseScraper) *FurnitureScraper {
	return &FurnitureScraper{BaseScraper: b}
}

func (s *FurnitureScraper) CanScrape(url string) bool {
	return utils.IsHTTPURL(url)
}

func (s *FurnitureScraper) ScrapeProduct(ctx context.Context, url string) (*models.ScrapedProduct, error) {
	doc, err := s.FetchDocument(ctx, url, func(doc *goquery.Document) bool {
		return doc.Find(`meta[property="og:title"], h1`).Length() > 0
	})
	if err != nil {
		return nil, err
	}
	return Parse(doc, url), nil
}

// Parse extracts metadata from an already fetched page.
func Parse(doc *goquery.Document, pageURL string) *models.ScrapedProduct {
	product := &models.ScrapedProduct{}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if strings.TrimSpace(title) == "" {
		title = doc.Find("h1").First().Text()
	}
	product.Title = strings.TrimSpace(title)
	if product.Title == "" {
		product.Title = untitled
	}

	product.Price = microdata(doc, "price")
	product.Color = microdata(doc, "color")
	product.Material = microdata(doc, "material")

	product.Dimensions = strings.TrimSpace(doc.Find(`[data-dimensions], .dimensions, [itemprop="size"]`).First().Text())
	if product.Dimensions == "" {
		product.Dimensions = metaContent(doc, `meta[itemprop="size"]`)
	}

	product.Images = collectImages(doc, pageURL)
	return product
}

// microdata reads meta[itemprop=name] first, then the first visible element tagged with name.
func microdata(doc *goquery.Document, name string) string {
	if v := metaContent(doc, `meta[itemprop="`+name+`"]`); v != "" {
		return v
	}
	return strings.TrimSpace(doc.Find(`[data-` + name + `], .` + name + `, [itemprop="` + name + `"]`).First().Text())
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

// collectImages returns og:image and img sources, resolved against the page
// URL and de-duplicated in document order.
func collectImages(doc *goquery.Document, pageURL string) []string {
	seen := make(map[string]bool)
	images := []string{}
	doc.Find(`meta[property="og:image"], img`).Each(func(i int, sel *goquery.Selection) {
		src := sel.AttrOr("content", "")
		if src == "" {
			src = sel.AttrOr("src", "")
		}
		if strings.TrimSpace(src) == "" {
			return
		}
		abs := utils.ResolveReference(pageURL, src)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	})
	return images
}
