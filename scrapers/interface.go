package scrapers

import (
	"context"

	"github.com/raushankrgupta/dekor-stager/models"
)

// Scraper defines the interface for all product scrapers
type Scraper interface {
	// CanScrape checks if the scraper can handle the given URL
	CanScrape(url string) bool
	// ScrapeProduct fetches the page and extracts furniture metadata
	ScrapeProduct(ctx context.Context, url string) (*models.ScrapedProduct, error)
}
