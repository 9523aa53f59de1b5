package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/dekor-stager/ingest"
	"github.com/raushankrgupta/dekor-stager/utils"
)

// IngestHandler accepts a multipart form with a product "url", a "file", or both
func (h *Handler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Ingest")
	defer flush()

	if !requireMethod(w, r, lb, http.MethodPost) {
		return
	}
	if err := parseMultipart(w, r); err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	upload, err := formUpload(r, "file")
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}

	req := ingest.Request{URL: strings.TrimSpace(r.FormValue("url")), File: upload}
	utils.AddToLogMessage(lb, fmt.Sprintf("url=%q file=%t", req.URL, upload != nil))

	product, err := h.Ingest.Ingest(r.Context(), req)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}

	utils.AddToLogMessage(lb, fmt.Sprintf("Product %s ingested with %d images", product.ID, len(product.Images)))
	utils.RespondData(w, product)
}
