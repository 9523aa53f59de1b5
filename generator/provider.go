// Package generator talks to the remote generative providers used for
// staging, background replacement and image-to-video.
package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/dekor-stager/models"
)

// ErrNoOutput is returned when a provider call succeeds but yields nothing usable.
var ErrNoOutput = errors.New("provider returned no output")

// maxFetchBytes caps downloads of generated assets.
const maxFetchBytes = 512 << 20

type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

type EditRequest struct {
	Prompt string
	Images []Image
	// Background asks for an edit of a single image rather than a composition.
	Background bool
}

// Output is one generated asset, either inline or behind a URL.
type Output struct {
	URL         string
	Data        []byte
	ContentType string
}

type Result struct {
	Outputs     []Output
	Description string
}

type VideoRequest struct {
	Prompt        string
	Image         Image
	AspectRatio   models.VideoAspectRatio
	Duration      string
	GenerateAudio bool
	Resolution    models.VideoResolution
}

type VideoResult struct {
	Video Output
}

type ImageEditor interface {
	EditImage(ctx context.Context, req EditRequest) (*Result, error)
}

type VideoGenerator interface {
	ImageToVideo(ctx context.Context, req VideoRequest) (*VideoResult, error)
}

// Fetch returns the bytes of an output, downloading it when only a URL is known.
func Fetch(ctx context.Context, client *http.Client, out Output) ([]byte, error) {
	if len(out.Data) > 0 {
		return out.Data, nil
	}
	if out.URL == "" {
		return nil, ErrNoOutput
	}
	if strings.HasPrefix(out.URL, "data:") {
		return decodeDataURL(out.URL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, out.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download output: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download output: bad status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoOutput
	}
	return data, nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	idx := strings.Index(dataURL, ";base64,")
	if idx < 0 {
		return nil, errors.New("unsupported data url")
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[idx+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}
