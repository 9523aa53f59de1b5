package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/raushankrgupta/dekor-stager/logger"
	"google.golang.org/api/option"
)

// GeminiClient edits images through the Gemini image model.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  model,
		log:    logger.OrNop(log).With("service", "GeminiClient"),
	}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) EditImage(ctx context.Context, req EditRequest) (*Result, error) {
	if len(req.Images) == 0 {
		return nil, errors.New("at least one image is required")
	}
	model := g.client.GenerativeModel(g.model)

	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData(imageFormat(img.ContentType), img.Data))
	}

	g.log.Info("gemini edit request", "model", g.model, "prompt_length", len(req.Prompt), "images", len(req.Images))
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return resultFromResponse(resp, g.log)
}

// resultFromResponse collects the image blobs of the first candidate as
// outputs and its text parts as the description.
func resultFromResponse(resp *genai.GenerateContentResponse, log *logger.Logger) (*Result, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoOutput
	}

	result := &Result{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Blob:
			if len(p.Data) > 0 {
				result.Outputs = append(result.Outputs, Output{Data: p.Data, ContentType: p.MIMEType})
			}
		case genai.Text:
			result.Description += string(p)
		default:
			logger.OrNop(log).Debug("ignoring unexpected part", "type", fmt.Sprintf("%T", p))
		}
	}
	if len(result.Outputs) == 0 {
		return nil, ErrNoOutput
	}
	return result, nil
}

// imageFormat maps a content type onto the short format genai.ImageData expects.
func imageFormat(contentType string) string {
	format := strings.TrimPrefix(strings.ToLower(contentType), "image/")
	switch format {
	case "jpeg", "jpg":
		return "jpeg"
	case "webp", "gif", "png":
		return format
	default:
		return "png"
	}
}
