package api

import (
	"net/http"

	"github.com/raushankrgupta/dekor-stager/utils"
	"github.com/raushankrgupta/dekor-stager/video"
)

// VideoGenerateHandler turns a stored image into a short clip
func (h *Handler) VideoGenerateHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Video Generate")
	defer flush()

	if !requireMethod(w, r, lb, http.MethodPost) {
		return
	}
	var req video.Request
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}

	job, err := h.Video.Generate(r.Context(), req)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.AddToLogMessage(lb, "Video stored at "+job.OutputVideoRef)
	utils.RespondData(w, job)
}

// VideoUploadHandler stores an image to use as a video source
func (h *Handler) VideoUploadHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Video Upload")
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

	src, err := h.Video.UploadSource(r.Context(), upload)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.RespondData(w, src)
}
