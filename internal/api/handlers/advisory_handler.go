package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxChatBodyBytes = 16 << 10

// Advisor answers a free-text symptom message
type Advisor interface {
	Advise(ctx context.Context, message string) (string, error)
}

// AdvisoryHandler handles the symptom advisory chat endpoint
type AdvisoryHandler struct {
	advisor Advisor
}

// NewAdvisoryHandler creates a new advisory handler
func NewAdvisoryHandler(advisor Advisor) *AdvisoryHandler {
	return &AdvisoryHandler{advisor: advisor}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /api/chat
func (h *AdvisoryHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			respondWithError(w, http.StatusBadRequest, "message is required")
		default:
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		}
		return
	}

	reply, err := h.advisor.Advise(r.Context(), req.Message)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
