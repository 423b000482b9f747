package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/poliq-ai/poliq/internal/api"
	"github.com/poliq-ai/poliq/internal/domain"
	"github.com/poliq-ai/poliq/internal/service"
)

// AskService defines the answer service interface for the ask endpoint.
type AskService interface {
	Ask(ctx context.Context, input service.AskInput) (*domain.Answer, error)
}

// AskHandler handles question-answering requests.
type AskHandler struct {
	service AskService
}

// NewAskHandler creates a new AskHandler instance.
func NewAskHandler(service AskService) *AskHandler {
	return &AskHandler{service: service}
}

type askRequest struct {
	Question      string `json:"question"`
	Corpus        string `json:"corpus,omitempty"`
	SessionID     string `json:"session_id"`
	TopKPerCorpus int    `json:"top_k_per_corpus,omitempty"`
}

// Ask handles POST /ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.AskInput{
		Question:      strings.TrimSpace(req.Question),
		Corpus:        strings.TrimSpace(req.Corpus),
		SessionID:     strings.TrimSpace(req.SessionID),
		TopKPerCorpus: req.TopKPerCorpus,
	}

	answer, err := h.service.Ask(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}
