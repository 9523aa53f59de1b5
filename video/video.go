// Package video turns a staged image into a short clip through the remote
// provider. There is no local fallback.
package video

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/compositor"
	"github.com/raushankrgupta/dekor-stager/generator"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
)

const generationFailedMessage = "Video generation failed."

type Request struct {
	Prompt         string                  `json:"prompt"`
	SourceImageRef string                  `json:"sourceImagePath"`
	AspectRatio    models.VideoAspectRatio `json:"aspectRatio"`
	Duration       string                  `json:"duration,omitempty"`
	GenerateAudio  bool                    `json:"generateAudio"`
	Resolution     models.VideoResolution  `json:"resolution"`
}

type Service struct {
	store   *storage.AssetStore
	videos  generator.VideoGenerator
	client  *http.Client
	timeout time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// NewService wires the video pipeline. videos may be nil when no provider is
// configured; Generate then reports RemoteUnavailable.
func NewService(store *storage.AssetStore, videos generator.VideoGenerator, client *http.Client, timeout time.Duration, log *logger.Logger) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Service{
		store:   store,
		videos:  videos,
		client:  client,
		timeout: timeout,
		log:     logger.OrNop(log).With("service", "VideoGeneration"),
		now:     time.Now,
	}
}

// Validate normalizes defaults in place and rejects unsupported values.
func (r *Request) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return apperr.Validation("Prompt must not be empty.")
	}
	if strings.TrimSpace(r.SourceImageRef) == "" {
		return apperr.Validation("Select or upload a source image.")
	}
	switch r.AspectRatio {
	case "":
		r.AspectRatio = models.AspectAuto
	case models.AspectAuto, models.AspectLandscape, models.AspectPortrait:
	default:
		return apperr.Validation("aspectRatio must be one of auto, 16:9, 9:16.")
	}
	switch r.Resolution {
	case "":
		r.Resolution = models.Resolution720p
	case models.Resolution720p, models.Resolution1080p:
	default:
		return apperr.Validation("resolution must be 720p or 1080p.")
	}
	switch r.Duration {
	case "":
		r.Duration = models.VideoDuration
	case models.VideoDuration:
	default:
		return apperr.Validation("duration must be 8s.")
	}
	return nil
}

// Generate invokes the provider once. Any provider failure is terminal and
// nothing is persisted.
func (s *Service) Generate(ctx context.Context, req Request) (*models.VideoJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	source, err := s.store.Read(ctx, req.SourceImageRef)
	if storage.IsNotFound(err) {
		return nil, apperr.New(apperr.KindMissingAsset, "Source image not found: "+req.SourceImageRef, nil)
	}
	if err != nil {
		return nil, apperr.Persistence("Failed to read source image.", err)
	}

	if s.videos == nil {
		return nil, apperr.RemoteUnavailable(generationFailedMessage, nil)
	}

	remoteCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.videos.ImageToVideo(remoteCtx, generator.VideoRequest{
		Prompt:        req.Prompt,
		Image:         generator.Image{Name: path.Base(req.SourceImageRef), ContentType: "image/png", Data: source},
		AspectRatio:   req.AspectRatio,
		Duration:      req.Duration,
		GenerateAudio: req.GenerateAudio,
		Resolution:    req.Resolution,
	})
	if err != nil {
		s.log.Warn("video generation failed", "source", req.SourceImageRef, "error", err)
		return nil, apperr.RemoteUnavailable(generationFailedMessage, err)
	}
	data, err := generator.Fetch(remoteCtx, s.client, res.Video)
	if err != nil {
		s.log.Warn("generated video download failed", "url", res.Video.URL, "error", err)
		return nil, apperr.RemoteUnavailable("Generated video could not be downloaded.", err)
	}

	videoID := storage.NewID("video")
	outputRef, err := s.store.Save(ctx, storage.CategoryVideoOutput, videoID+".mp4", data)
	if err != nil {
		return nil, apperr.Persistence("Failed to store video.", err)
	}

	job := &models.VideoJob{
		ID:             videoID,
		CreatedAt:      s.now().UTC(),
		SourceImageRef: req.SourceImageRef,
		Prompt:         req.Prompt,
		AspectRatio:    req.AspectRatio,
		Duration:       req.Duration,
		GenerateAudio:  req.GenerateAudio,
		Resolution:     req.Resolution,
		OutputVideoRef: outputRef,
		Generator:      models.GeneratorRemote,
	}
	if _, err := s.store.SaveJSON(ctx, storage.CategoryVideoMeta, videoID, job); err != nil {
		return nil, apperr.Persistence("Failed to save video record.", err)
	}
	s.log.Info("video generated", "video_id", videoID, "output_ref", outputRef)
	return job, nil
}

// UploadSource stores an image for later use as a video source, next to a
// PNG copy that is returned as the reference.
func (s *Service) UploadSource(ctx context.Context, upload *models.Upload) (*models.VideoSource, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, apperr.Validation("Upload an image file.")
	}

	originalName := "upload.png"
	if strings.TrimSpace(upload.Filename) != "" {
		originalName = storage.SanitizeFilename(path.Base(upload.Filename))
	}
	ext := path.Ext(originalName)
	if ext == "" {
		ext = ".png"
	}
	baseName := strings.TrimSuffix(originalName, path.Ext(originalName))
	rawName := baseName + "-" + storage.NewID("videoimg") + ext

	normalized, err := compositor.NormalizePNG(upload.Data)
	if err != nil {
		return nil, apperr.Validation("Uploaded file is not a supported image.")
	}
	if _, err := s.store.Save(ctx, storage.CategoryVideoInput, rawName, upload.Data); err != nil {
		return nil, apperr.Persistence("Failed to store upload.", err)
	}
	pngRef, err := s.store.Save(ctx, storage.CategoryVideoInput, strings.TrimSuffix(rawName, ext)+".png", normalized)
	if err != nil {
		return nil, apperr.Persistence("Failed to store upload.", err)
	}

	filename := upload.Filename
	if filename == "" {
		filename = rawName
	}
	return &models.VideoSource{ImageRef: pngRef, OriginalFilename: filename}, nil
}
