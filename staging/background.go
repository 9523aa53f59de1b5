package staging

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/generator"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/storage"
)

const backgroundFailedMessage = "AI background generation service failed."

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

type BackgroundRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Prompt      string `json:"prompt"`
}

type BackgroundResult struct {
	OutputRef string `json:"outputImagePath"`
}

// GenerateBackground replaces the background of a single image using the
// caller's prompt. There is no local fallback. The result is recorded as a
// StageRecord so it shows up in the gallery.
func (o *Orchestrator) GenerateBackground(ctx context.Context, req BackgroundRequest) (*BackgroundResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if strings.TrimSpace(req.ImageBase64) == "" || prompt == "" {
		return nil, apperr.Validation("Missing imageBase64 or prompt.")
	}
	input, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(strings.TrimSpace(req.ImageBase64), ""))
	if err != nil || len(input) == 0 {
		return nil, apperr.Validation("imageBase64 is not valid base64 image data.")
	}

	log := o.log.With("operation", "generateBackground")

	inputRef, err := o.store.Save(ctx, storage.CategoryStagingTemp, storage.NewID("temp_bg_input")+".png", input)
	if err != nil {
		return nil, apperr.Persistence("Failed to store input image.", err)
	}

	if o.editor == nil {
		return nil, apperr.RemoteUnavailable(backgroundFailedMessage, nil)
	}
	remoteCtx, cancel := context.WithTimeout(ctx, o.remoteTimeout)
	defer cancel()

	output, err := runEdit(remoteCtx, o.editor, o.client, generator.EditRequest{
		Prompt:     prompt,
		Images:     []generator.Image{{Name: "input.png", ContentType: "image/png", Data: input}},
		Background: true,
	})
	if err != nil {
		log.Warn("background generation failed", "input_ref", inputRef, "error", err)
		return nil, apperr.RemoteUnavailable(backgroundFailedMessage, err)
	}

	outputRef, err := o.store.Save(ctx, storage.CategoryStagingOutput, storage.NewID("generated_bg")+".png", output)
	if err != nil {
		return nil, apperr.Persistence("Failed to store generated image.", err)
	}

	recordID := storage.NewID("stage")
	record := &models.StageRecord{
		ID:             recordID,
		CreatedAt:      o.now().UTC(),
		ProductIDs:     []string{},
		RoomImageRef:   inputRef,
		OutputImageRef: outputRef,
		Prompt:         prompt,
		Generator:      models.GeneratorRemoteBackground,
		Confidence:     models.RemoteConfidence,
	}
	if _, err := o.store.SaveJSON(ctx, storage.CategoryStagingMeta, recordID, record); err != nil {
		return nil, apperr.Persistence("Failed to save staging record.", err)
	}
	log.Info("background generated", "output_ref", outputRef, "record_id", recordID)

	return &BackgroundResult{OutputRef: outputRef}, nil
}
