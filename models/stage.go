package models

import "time"

type Generator string

const (
	GeneratorRemote           Generator = "remote"
	GeneratorLocalFallback    Generator = "local-fallback"
	GeneratorRemoteBackground Generator = "remote-background"
)

const (
	RemoteConfidence   = 0.9
	FallbackConfidence = 0.6
)

// Selection points at one image of one ingested product
type Selection struct {
	ProductID string `json:"productId"`
	ImageID   string `json:"imageId"`
}

// StageRecord represents a finished staging result
type StageRecord struct {
	ID             string    `bson:"_id" json:"id"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	ProductIDs     []string  `bson:"product_ids" json:"productIds"`
	RoomImageRef   string    `bson:"room_image_ref" json:"roomImagePath"`
	OutputImageRef string    `bson:"output_image_ref" json:"outputImagePath"`
	Prompt         string    `bson:"prompt" json:"prompt"`
	Generator      Generator `bson:"generator" json:"generator"`
	Confidence     float64   `bson:"confidence" json:"confidence"`
}

// GalleryItem is a StageRecord plus where to download its output
type GalleryItem struct {
	StageRecord
	DownloadRef string `json:"downloadUrl"`
}
