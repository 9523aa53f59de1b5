// Package ingest turns a product URL or an uploaded photo into a stored
// Product with normalized PNG images.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/compositor"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/scrapers"
	"github.com/raushankrgupta/dekor-stager/storage"
	"github.com/raushankrgupta/dekor-stager/utils"
)

const (
	maxCandidates       = 4
	downloadConcurrency = 4

	urlImageConfidence    = 0.85
	uploadImageConfidence = 0.8
)

// ProductScraper is satisfied by *scrapers.Registry.
type ProductScraper interface {
	Scrape(ctx context.Context, url string) (*scrapers.Result, error)
}

type Request struct {
	URL  string
	File *models.Upload
}

type Resolver struct {
	store   *storage.AssetStore
	scraper ProductScraper
	client  *http.Client
	log     *logger.Logger
	now     func() time.Time
}

func NewResolver(store *storage.AssetStore, scraper ProductScraper, client *http.Client, log *logger.Logger) *Resolver {
	if client == nil {
		client = utils.NewHTTPClient(30 * time.Second)
	}
	return &Resolver{
		store:   store,
		scraper: scraper,
		client:  client,
		log:     logger.OrNop(log).With("service", "IngestionResolver"),
		now:     time.Now,
	}
}

// Ingest stores every usable image of the product and writes its record.
// URL images come first, followed by the upload when both are given.
func (r *Resolver) Ingest(ctx context.Context, req Request) (*models.Product, error) {
	rawURL := strings.TrimSpace(req.URL)
	hasFile := req.File != nil && len(req.File.Data) > 0
	if rawURL == "" && !hasFile {
		return nil, apperr.Validation("Provide a product URL or upload an image.")
	}

	productID := storage.NewID("product")
	log := r.log.With("product_id", productID)

	var scraped *models.ScrapedProduct
	var images []models.ProductImage

	if rawURL != "" {
		var err error
		scraped, images, err = r.fromURL(ctx, log, productID, rawURL)
		var scrapeErr *scrapeError
		switch {
		case errors.As(err, &scrapeErr) && hasFile:
			// the upload alone can still make a product
			log.Warn("scrape failed, continuing with the upload", "url", rawURL, "error", scrapeErr.err)
		case errors.As(err, &scrapeErr):
			return nil, scrapeErr.err
		case err != nil:
			return nil, err
		}
	}

	if hasFile {
		imageID := uuid.NewString()
		name := req.File.Filename
		if strings.TrimSpace(name) == "" {
			name = "upload"
		}
		img, err := r.storeImage(ctx, productID, imageID, storage.SanitizeFilename(imageID+"-"+path.Base(name)), req.File.Data, uploadImageConfidence)
		if errors.Is(err, compositor.ErrNotImage) {
			log.Warn("uploaded file is not an image", "filename", req.File.Filename, "error", err)
		} else if err != nil {
			return nil, err
		} else {
			images = append(images, img)
		}
	}

	if len(images) == 0 {
		return nil, apperr.NoUsableImages()
	}

	product := &models.Product{
		ID:        productID,
		Source:    models.SourceUpload,
		Title:     "Uploaded Product",
		CreatedAt: r.now().UTC(),
		Images:    images,
	}
	if rawURL != "" {
		product.Source = models.SourceURL
		product.SourceURL = rawURL
	}
	switch {
	case scraped != nil && scraped.Title != "":
		product.Title = scraped.Title
	case hasFile && req.File.Filename != "":
		product.Title = req.File.Filename
	}
	if scraped != nil {
		product.Price = scraped.Price
		product.Color = scraped.Color
		product.Material = scraped.Material
		product.Dimensions = scraped.Dimensions
	}

	if _, err := r.store.SaveJSON(ctx, storage.CategoryProductMeta, productID, product); err != nil {
		return nil, apperr.Persistence("Failed to save product metadata.", err)
	}
	log.Info("product ingested", "source", product.Source, "images", len(images))
	return product, nil
}

// scrapeError marks a failure to scrape the product page itself, as opposed
// to a failure storing what was scraped.
type scrapeError struct {
	err error
}

func (e *scrapeError) Error() string { return e.err.Error() }
func (e *scrapeError) Unwrap() error { return e.err }

// fromURL scrapes the product page and stores up to maxCandidates of its
// images. Images that fail to download or decode are skipped.
func (r *Resolver) fromURL(ctx context.Context, log *logger.Logger, productID, rawURL string) (*models.ScrapedProduct, []models.ProductImage, error) {
	res, err := r.scraper.Scrape(ctx, rawURL)
	if err != nil {
		log.Warn("scrape failed", "url", rawURL, "error", err)
		return nil, nil, &scrapeError{err: err}
	}
	scraped := res.Product
	log.Info("scraped product page", "url", res.ResolvedURL, "title", scraped.Title, "candidates", len(scraped.Images))

	candidates := scraped.Images
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	var images []models.ProductImage
	for _, d := range utils.DownloadAll(ctx, r.client, candidates, downloadConcurrency) {
		if d.Err != nil {
			log.Warn("image download failed", "url", d.URL, "error", d.Err)
			continue
		}
		imageID := uuid.NewString()
		img, err := r.storeImage(ctx, productID, imageID, storage.SanitizeFilename(imageID+extFromURL(d.URL)), d.Data, urlImageConfidence)
		if errors.Is(err, compositor.ErrNotImage) {
			log.Warn("skipping undecodable image", "url", d.URL, "error", err)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		images = append(images, img)
	}
	return scraped, images, nil
}

// storeImage normalizes data to PNG and stores both the original and the processed copy.
func (r *Resolver) storeImage(ctx context.Context, productID, imageID, originalName string, data []byte, confidence float64) (models.ProductImage, error) {
	processed, err := compositor.NormalizePNG(data)
	if err != nil {
		return models.ProductImage{}, err
	}

	originalRef, err := r.store.Save(ctx, storage.CategoryProductOriginal, productID+"/"+originalName, data)
	if err != nil {
		return models.ProductImage{}, apperr.Persistence("Failed to store product image.", err)
	}
	processedRef, err := r.store.Save(ctx, storage.CategoryProductProcessed, productID+"/"+imageID+".png", processed)
	if err != nil {
		return models.ProductImage{}, apperr.Persistence("Failed to store product image.", err)
	}

	return models.ProductImage{
		ID:                imageID,
		OriginalRef:       originalRef,
		ProcessedRef:      processedRef,
		BackgroundRemoved: true,
		Confidence:        confidence,
	}, nil
}

// Product loads a previously ingested product.
func Product(ctx context.Context, store *storage.AssetStore, productID string) (*models.Product, error) {
	var p models.Product
	if err := store.ReadJSON(ctx, storage.CategoryProductMeta, productID, &p); err != nil {
		if storage.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read product %s: %w", productID, err)
	}
	return &p, nil
}

func extFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".jpg"
	}
	ext := path.Ext(u.Path)
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}
	return ext
}
