package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/dekor-stager/apperr"
	"github.com/raushankrgupta/dekor-stager/gallery"
	"github.com/raushankrgupta/dekor-stager/ingest"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/models"
	"github.com/raushankrgupta/dekor-stager/staging"
	"github.com/raushankrgupta/dekor-stager/utils"
	"github.com/raushankrgupta/dekor-stager/video"
)

// maxUploadBytes caps multipart and JSON request bodies.
const maxUploadBytes = 25 << 20

type ProductIngester interface {
	Ingest(ctx context.Context, req ingest.Request) (*models.Product, error)
}

type RoomAnalyzer interface {
	Analyze(ctx context.Context, upload *models.Upload) (*models.RoomIntake, error)
}

type Stager interface {
	Stage(ctx context.Context, req staging.Request) (*models.StageRecord, error)
	GenerateBackground(ctx context.Context, req staging.BackgroundRequest) (*staging.BackgroundResult, error)
}

type GalleryLister interface {
	List(ctx context.Context, page, pageSize int) (*gallery.Page, error)
}

type VideoService interface {
	Generate(ctx context.Context, req video.Request) (*models.VideoJob, error)
	UploadSource(ctx context.Context, upload *models.Upload) (*models.VideoSource, error)
}

// Handler serves the staging API. Each field backs one group of routes.
type Handler struct {
	Ingest  ProductIngester
	Rooms   RoomAnalyzer
	Staging Stager
	Gallery GalleryLister
	Video   VideoService
	Log     *logger.Logger
}

// requestLog starts a per-request log buffer that is flushed when the returned func runs.
func (h *Handler) requestLog(name string) (*strings.Builder, func()) {
	lb := &strings.Builder{}
	utils.AddToLogMessage(lb, "["+name+" API]")
	return lb, func() { logger.OrNop(h.Log).Info(lb.String()) }
}

func requireMethod(w http.ResponseWriter, r *http.Request, lb *strings.Builder, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	utils.RespondError(w, lb, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// parseMultipart bounds the body and parses the form.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large.")
		}
		return apperr.Validation("Expected a multipart form body.")
	}
	return nil
}

// formUpload returns the named file field, or nil when absent.
func formUpload(r *http.Request, field string) (*models.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("Could not read uploaded file.")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Validation("Could not read uploaded file.")
	}
	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid JSON body.")
	}
	return nil
}
