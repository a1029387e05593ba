package api

import (
	"context"
	"net/http"

	"github.com/okian/primeapi/internal/domain/types"
	"github.com/okian/primeapi/pkg/logger"
)

// AboutDependencies defines the interface for the dataset summary.
type AboutDependencies interface {
	About(ctx context.Context) (types.About, error)
}

// AboutHandler handles about requests.
type AboutHandler struct {
	deps AboutDependencies
	log  logger.Logger
}

// NewAboutHandler creates a new about handler.
func NewAboutHandler(deps AboutDependencies, log logger.Logger) *AboutHandler {
	return &AboutHandler{deps: deps, log: log}
}

// HandleAbout handles GET /about and GET / requests.
func (h *AboutHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	about, err := h.deps.About(r.Context())
	if err != nil {
		writeDomainError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, about)
}
