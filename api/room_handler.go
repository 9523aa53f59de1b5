package api

import (
	"net/http"

	"github.com/raushankrgupta/dekor-stager/utils"
)

// RoomAnalyzeHandler stores an uploaded room photo
func (h *Handler) RoomAnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Room Analyze")
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

	res, err := h.Rooms.Analyze(r.Context(), upload)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.AddToLogMessage(lb, "Room stored at "+res.RoomRef)
	utils.RespondData(w, res)
}
