package handlers

import (
	"net/http"

	"github.com/poliq-ai/poliq/internal/api"
)

// CorpusCatalog exposes the scoped corpus names known to the registry.
type CorpusCatalog interface {
	ScopedNames() []string
}

// CorporaHandler serves the service banner and corpus listing.
type CorporaHandler struct {
	catalog CorpusCatalog
}

// NewCorporaHandler creates a new CorporaHandler instance.
func NewCorporaHandler(catalog CorpusCatalog) *CorporaHandler {
	return &CorporaHandler{catalog: catalog}
}

type bannerResponse struct {
	Message       string   `json:"message"`
	ScopedCorpora []string `json:"scoped_corpora"`
	UsageHint     string   `json:"usage_hint"`
}

// Root handles GET /
func (h *CorporaHandler) Root(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.ScopedNames()
	if names == nil {
		names = []string{}
	}

	api.Success(w, http.StatusOK, bannerResponse{
		Message:       "Poliq policy Q&A API is running",
		ScopedCorpora: names,
		UsageHint:     "POST /ask with {question, session_id} and optionally {corpus}",
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
