package api

import (
	"fmt"
	"net/http"

	"github.com/raushankrgupta/dekor-stager/staging"
	"github.com/raushankrgupta/dekor-stager/utils"
)

// StageHandler places the selected products into the room
func (h *Handler) StageHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Stage")
	defer flush()

	if !requireMethod(w, r, lb, http.MethodPost) {
		return
	}
	var req staging.Request
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.AddToLogMessage(lb, fmt.Sprintf("room=%s selections=%d", req.RoomRef, len(req.Selections)))

	record, err := h.Staging.Stage(r.Context(), req)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.AddToLogMessage(lb, fmt.Sprintf("Stage %s done via %s", record.ID, record.Generator))
	utils.RespondData(w, record)
}

// GenerateBackgroundHandler replaces the background of a base64 image
func (h *Handler) GenerateBackgroundHandler(w http.ResponseWriter, r *http.Request) {
	lb, flush := h.requestLog("Generate Background")
	defer flush()

	if !requireMethod(w, r, lb, http.MethodPost) {
		return
	}
	var req staging.BackgroundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}

	res, err := h.Staging.GenerateBackground(r.Context(), req)
	if err != nil {
		utils.RespondAppError(w, lb, err)
		return
	}
	utils.AddToLogMessage(lb, "Background generated at "+res.OutputRef)
	utils.RespondData(w, res)
}
