package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/dekor-stager/logger"
)

const (
	ModelEdit         = "fal-ai/nano-banana/edit"
	ModelGenerate     = "fal-ai/nano-banana"
	ModelImageToVideo = "fal-ai/veo3/fast/image-to-video"
)

const (
	statusCompleted = "COMPLETED"
	statusFailed    = "FAILED"
	statusError     = "ERROR"
)

type FalOptions struct {
	Key          string
	QueueURL     string
	RestURL      string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *logger.Logger
}

// FalClient drives the fal.ai storage and queue APIs.
type FalClient struct {
	key          string
	queueURL     string
	restURL      string
	pollInterval time.Duration
	httpClient   *http.Client
	log          *logger.Logger
}

func NewFalClient(opts FalOptions) (*FalClient, error) {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		return nil, errors.New("missing FAL_KEY")
	}
	queueURL := strings.TrimRight(opts.QueueURL, "/")
	if queueURL == "" {
		queueURL = "https://queue.fal.run"
	}
	restURL := strings.TrimRight(opts.RestURL, "/")
	if restURL == "" {
		restURL = "https://rest.alpha.fal.ai"
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = 1500 * time.Millisecond
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &FalClient{
		key:          key,
		queueURL:     queueURL,
		restURL:      restURL,
		pollInterval: poll,
		httpClient:   client,
		log:          logger.OrNop(opts.Logger).With("service", "FalClient"),
	}, nil
}

type falFile struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
}

type falEditInput struct {
	Prompt       string   `json:"prompt"`
	Instructions string   `json:"instructions"`
	ImageURLs    []string `json:"image_urls"`
	NumImages    int      `json:"num_images"`
	OutputFormat string   `json:"output_format"`
}

type falEditOutput struct {
	Images      []falFile `json:"images"`
	Description string    `json:"description"`
}

type falVideoInput struct {
	Prompt        string `json:"prompt"`
	ImageURL      string `json:"image_url"`
	AspectRatio   string `json:"aspect_ratio"`
	Duration      string `json:"duration"`
	GenerateAudio bool   `json:"generate_audio"`
	Resolution    string `json:"resolution"`
}

type falVideoOutput struct {
	Video *falFile `json:"video"`
}

type falQueueResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type falStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type falUploadInitiate struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

// EditImage uploads every image to fal storage and runs the nano-banana model.
func (c *FalClient) EditImage(ctx context.Context, req EditRequest) (*Result, error) {
	if len(req.Images) == 0 {
		return nil, errors.New("at least one image is required")
	}
	urls := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		u, err := c.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	model := ModelGenerate
	if req.Background || len(urls) > 1 {
		model = ModelEdit
	}
	input := falEditInput{
		Prompt:       req.Prompt,
		Instructions: req.Prompt,
		ImageURLs:    urls,
		NumImages:    1,
		OutputFormat: "png",
	}
	c.log.Info("fal edit request", "model", model, "prompt_length", len(req.Prompt), "image_urls_count", len(urls))

	var out falEditOutput
	if err := c.subscribe(ctx, model, input, &out); err != nil {
		return nil, err
	}
	c.log.Info("fal edit response", "images_count", len(out.Images), "description", out.Description)

	result := &Result{Description: out.Description}
	for _, img := range out.Images {
		if img.URL == "" {
			continue
		}
		result.Outputs = append(result.Outputs, Output{URL: img.URL, ContentType: img.ContentType})
	}
	if len(result.Outputs) == 0 {
		return nil, ErrNoOutput
	}
	return result, nil
}

func (c *FalClient) ImageToVideo(ctx context.Context, req VideoRequest) (*VideoResult, error) {
	imageURL, err := c.upload(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	input := falVideoInput{
		Prompt:        req.Prompt,
		ImageURL:      imageURL,
		AspectRatio:   string(req.AspectRatio),
		Duration:      req.Duration,
		GenerateAudio: req.GenerateAudio,
		Resolution:    string(req.Resolution),
	}
	c.log.Info("fal video request", "prompt_length", len(req.Prompt), "aspect_ratio", input.AspectRatio,
		"duration", input.Duration, "generate_audio", input.GenerateAudio, "resolution", input.Resolution)

	var out falVideoOutput
	if err := c.subscribe(ctx, ModelImageToVideo, input, &out); err != nil {
		return nil, err
	}
	if out.Video == nil || out.Video.URL == "" {
		return nil, ErrNoOutput
	}
	return &VideoResult{Video: Output{URL: out.Video.URL, ContentType: out.Video.ContentType}}, nil
}

// upload pushes an image to fal storage and returns its public URL.
func (c *FalClient) upload(ctx context.Context, img Image) (string, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	name := img.Name
	if name == "" {
		name = "image.png"
	}

	var initiated falUploadInitiate
	body := map[string]string{"content_type": contentType, "file_name": name}
	if err := c.doJSON(ctx, http.MethodPost, c.restURL+"/storage/upload/initiate", body, &initiated); err != nil {
		return "", fmt.Errorf("initiate upload: %w", err)
	}
	if initiated.UploadURL == "" || initiated.FileURL == "" {
		return "", errors.New("fal storage upload did not return a URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, initiated.UploadURL, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload: bad status: %s", resp.Status)
	}
	return initiated.FileURL, nil
}

// subscribe submits a job to the queue and blocks until it completes.
func (c *FalClient) subscribe(ctx context.Context, model string, input any, out any) error {
	var queued falQueueResponse
	if err := c.doJSON(ctx, http.MethodPost, c.queueURL+"/"+model, input, &queued); err != nil {
		return fmt.Errorf("submit %s: %w", model, err)
	}
	if queued.StatusURL == "" || queued.ResponseURL == "" {
		return fmt.Errorf("submit %s: queue response missing urls", model)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		var status falStatus
		if err := c.doJSON(ctx, http.MethodGet, queued.StatusURL, nil, &status); err != nil {
			return fmt.Errorf("poll %s: %w", queued.RequestID, err)
		}
		switch status.Status {
		case statusCompleted:
			if err := c.doJSON(ctx, http.MethodGet, queued.ResponseURL, nil, out); err != nil {
				return fmt.Errorf("fetch result %s: %w", queued.RequestID, err)
			}
			return nil
		case statusFailed, statusError:
			return fmt.Errorf("request %s failed: %s", queued.RequestID, status.Error)
		}
		c.log.Debug("fal request pending", "request_id", queued.RequestID, "status", status.Status)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *FalClient) doJSON(ctx context.Context, method, url string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fal API %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
