package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/raushankrgupta/dekor-stager/scrapers"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/raushankrgupta/dekor-stager/utils"
)

func main() {
	urls := os.Args[1:]
	if len(urls) == 0 {
		urls = []string{
			"https://amzn.in/d/8sCIA5h",
			"https://www.ikea.com/in/en/p/poaeng-armchair-birch-veneer-knisa-light-beige-s59305581/",
		}
	}

	registry := scrapers.NewRegistry(base.NewBaseScraper(base.Options{
		Client:          utils.NewHTTPClient(30 * time.Second),
		BrowserFallback: os.Getenv("BROWSER_FALLBACK") == "true",
	}))

	for _, u := range urls {
		fmt.Printf("Testing URL: %s\n", u)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		scraper, resolved, err := registry.GetScraper(ctx, u)
		if err != nil {
			cancel()
			log.Printf("Failed to get scraper for %s: %v\n", u, err)
			continue
		}
		fmt.Printf("Resolved URL: %s\n", resolved)
		fmt.Printf("Scraper: %T\n", scraper)

		product, err := scraper.ScrapeProduct(ctx, resolved)
		cancel()
		if err != nil {
			log.Printf("Failed to scrape product: %v\n", err)
			continue
		}

		b, _ := json.MarshalIndent(product, "", "  ")
		fmt.Printf("Product: %s\n", string(b))
		fmt.Println("--------------------------------------------------")
	}
}
