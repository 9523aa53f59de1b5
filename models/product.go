package models

import "time"

type ProductSource string

const (
	SourceURL    ProductSource = "url"
	SourceUpload ProductSource = "upload"
)

// ProductImage is one normalized image owned by a Product
type ProductImage struct {
	ID                string  `bson:"id" json:"id"`
	OriginalRef       string  `bson:"original_ref" json:"originalPath"`
	ProcessedRef      string  `bson:"processed_ref,omitempty" json:"processedPath,omitempty"` // set only after normalization
	BackgroundRemoved bool    `bson:"background_removed" json:"backgroundRemoved"`
	Confidence        float64 `bson:"confidence" json:"confidence"`
	Notes             string  `bson:"notes,omitempty" json:"promptNotes,omitempty"`
}

// Product represents an ingested piece of furniture
type Product struct {
	ID         string         `bson:"_id" json:"id"`
	Source     ProductSource  `bson:"source" json:"source"`
	SourceURL  string         `bson:"source_url,omitempty" json:"sourceUrl,omitempty"`
	Title      string         `bson:"title" json:"title"`
	Price      string         `bson:"price,omitempty" json:"price,omitempty"`
	Color      string         `bson:"color,omitempty" json:"color,omitempty"`
	Material   string         `bson:"material,omitempty" json:"material,omitempty"`
	Dimensions string         `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	CreatedAt  time.Time      `bson:"created_at" json:"createdAt"`
	Images     []ProductImage `bson:"images" json:"images"`
}

// Image returns the image with the given id, if present.
func (p *Product) Image(imageID string) (ProductImage, bool) {
	for _, img := range p.Images {
		if img.ID == imageID {
			return img, true
		}
	}
	return ProductImage{}, false
}

// ScrapedProduct is the raw metadata pulled from a product page
type ScrapedProduct struct {
	Title      string   `json:"title"`
	Price      string   `json:"price,omitempty"`
	Color      string   `json:"color,omitempty"`
	Material   string   `json:"material,omitempty"`
	Dimensions string   `json:"dimensions,omitempty"`
	Images     []string `json:"image_paths"` // absolute, de-duplicated
}

// Upload is a binary file handed in by a caller
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
