package models

import "time"

type VideoAspectRatio string

const (
	AspectAuto      VideoAspectRatio = "auto"
	AspectLandscape VideoAspectRatio = "16:9"
	AspectPortrait  VideoAspectRatio = "9:16"
)

type VideoResolution string

const (
	Resolution720p  VideoResolution = "720p"
	Resolution1080p VideoResolution = "1080p"
)

// VideoDuration is the only clip length the provider accepts.
const VideoDuration = "8s"

// VideoJob represents a finished image-to-video generation
type VideoJob struct {
	ID             string           `bson:"_id" json:"id"`
	CreatedAt      time.Time        `bson:"created_at" json:"createdAt"`
	SourceImageRef string           `bson:"source_image_ref" json:"sourceImagePath"`
	Prompt         string           `bson:"prompt" json:"prompt"`
	AspectRatio    VideoAspectRatio `bson:"aspect_ratio" json:"aspectRatio"`
	Duration       string           `bson:"duration" json:"duration"`
	GenerateAudio  bool             `bson:"generate_audio" json:"generateAudio"`
	Resolution     VideoResolution  `bson:"resolution" json:"resolution"`
	OutputVideoRef string           `bson:"output_video_ref" json:"outputVideoPath"`
	Generator      Generator        `bson:"generator" json:"generator"`
}

// VideoSource is an uploaded image prepared for video generation
type VideoSource struct {
	ImageRef         string `json:"imagePath"`
	OriginalFilename string `json:"originalFilename"`
}
