package api

import (
	"net/http"
	"strconv"

	"github.com/raushankrgupta/dekor-stager/utils"
)

// GalleryHandler returns staged results, newest first
func (h *Handler) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Gallery")
	defer flush()

	if !requireMethod(w, r, lb, http.MethodGet) {
		return
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = p
	}
	// 0 selects the default page size
	pageSize := 0
	if s, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		pageSize = s
	}

	res, err := h.Gallery.List(r.Context(), page, pageSize)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.RespondData(w, res)
}
