package api

import (
	"context"
	"net/http"

	"github.com/okian/primeapi/internal/domain/classify"
	"github.com/okian/primeapi/internal/domain/types"
	"github.com/okian/primeapi/pkg/logger"
)

// CheckDependencies defines the interface for batch classification.
type CheckDependencies interface {
	CheckIfPrime(ctx context.Context, raw []string) ([]types.Lookup, error)
}

// CheckHandler handles batch classification requests.
type CheckHandler struct {
	deps CheckDependencies
	log  logger.Logger
}

// NewCheckHandler creates a new check handler.
func NewCheckHandler(deps CheckDependencies, log logger.Logger) *CheckHandler {
	return &CheckHandler{deps: deps, log: log}
}

// HandleCheck handles GET /checkIfPrime?num=... requests. num may repeat.
func (h *CheckHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	lookups, err := h.deps.CheckIfPrime(r.Context(), r.URL.Query()[classify.ParamNum])
	if err != nil {
		writeDomainError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lookups)
}
