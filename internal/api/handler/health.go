package handler

import (
	"net/http"

	"github.com/mcoot/gamedb-go/internal/api/response"
	"github.com/mcoot/gamedb-go/internal/storage"
)

// StoreProvider hands out the store once it is connected
type StoreProvider interface {
	Store() (storage.Storage, error)
}

// HealthHandler reports whether the store is connected and answering
type HealthHandler struct {
	stores StoreProvider
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(stores StoreProvider) *HealthHandler {
	return &HealthHandler{
		stores: stores,
	}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	st, err := h.stores.Store()
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{
			Status: "degraded",
			Store:  "unavailable",
		})
		return
	}

	if err := st.Ping(r.Context()); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{
			Status: "degraded",
			Store:  "unreachable",
			Error:  err.Error(),
		})
		return
	}

	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Store: "ready"})
}
