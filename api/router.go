package api

import (
	"net/http"

	"github.com/raushankrgupta/dekor-stager/utils"
)

// assetPrefixes are the top-level directories served from the local asset root.
var assetPrefixes = []string{"/products/", "/staging/", "/videos/"}

// NewRouter registers every API route. When assetRoot is non-empty, stored
// assets are served from it so references resolve as URLs.
func NewRouter(h *Handler, assetRoot string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ingest", h.IngestHandler)
	mux.HandleFunc("/api/room-analyze", h.RoomAnalyzeHandler)
	mux.HandleFunc("/api/stage", h.StageHandler)
	mux.HandleFunc("/api/generate-background", h.GenerateBackgroundHandler)
	mux.HandleFunc("/api/gallery", h.GalleryHandler)
	mux.HandleFunc("/api/video-generate", h.VideoGenerateHandler)
	mux.HandleFunc("/api/video-upload", h.VideoUploadHandler)

	if assetRoot != "" {
		files := http.FileServer(http.Dir(assetRoot))
		for _, prefix := range assetPrefixes {
			mux.Handle(prefix, files)
		}
	}

	return utils.LatencyMiddleware(h.Log)(utils.CORSMiddleware(mux))
}
