package scrapers

import "github.com/raushankrgupta/dekor-stager/models"

// Result is a scraped product together with the URL it was finally read from.
type Result struct {
	Product     *models.ScrapedProduct
	ResolvedURL string
}
