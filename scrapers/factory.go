package scrapers

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/scrapers/amazon"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/raushankrgupta/dekor-stager/scrapers/furniture"
	"github.com/raushankrgupta/dekor-stager/utils"
)

// Registry picks a scraper for a product URL. Site-specific scrapers are
// tried first; the generic furniture scraper accepts any http(s) URL.
type Registry struct {
	scrapers []Scraper
	resolve  func(ctx context.Context, url string) (string, error)
}

func NewRegistry(b *base.BaseScraper) *Registry {
	return &Registry{
		scrapers: []Scraper{
			amazon.NewAmazonScraper(b),
			furniture.NewFurnitureScraper(b),
		},
		resolve: utils.ResolveShortenedURL,
	}
}

// GetScraper returns the appropriate scraper and the resolved URL
func (r *Registry) GetScraper(ctx context.Context, url string) (Scraper, string, error) {
	if !utils.IsHTTPURL(url) {
		return nil, url, apperr.Validation("Product URL must be an absolute http(s) URL.")
	}

	// Resolve shortened URLs (e.g., amzn.in, bit.ly)
	resolvedURL, err := r.resolve(ctx, url)
	if err != nil {
		return nil, url, apperr.UpstreamFetch(fmt.Sprintf("Could not reach %s", url), err)
	}

	for _, s := range r.scrapers {
		if s.CanScrape(resolvedURL) {
			return s, resolvedURL, nil
		}
	}

	return nil, resolvedURL, apperr.UpstreamFetch(fmt.Sprintf("no scraper found for url: %s", resolvedURL), nil)
}

// Scrape resolves url, picks a scraper and runs it.
func (r *Registry) Scrape(ctx context.Context, url string) (*Result, error) {
	s, resolved, err := r.GetScraper(ctx, url)
	if err != nil {
		return nil, err
	}
	product, err := s.ScrapeProduct(ctx, resolved)
	if err != nil {
		return nil, err
	}
	return &Result{Product: product, ResolvedURL: resolved}, nil
}
