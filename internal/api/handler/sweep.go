package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/gamedb-go/internal/api/response"
	"github.com/mcoot/gamedb-go/internal/services/sweep"
)

// SweepHandler triggers maintenance sweeps on demand
type SweepHandler struct {
	sweeps *sweep.Service
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(sweeps *sweep.Service) *SweepHandler {
	return &SweepHandler{
		sweeps: sweeps,
	}
}

// Positions handles POST /api/v1/sweeps/positions
func (h *SweepHandler) Positions(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.sweeps.ResetPositions)
}

// Containers handles POST /api/v1/sweeps/containers
func (h *SweepHandler) Containers(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.sweeps.DesanitizeContainers)
}

func (h *SweepHandler) run(w http.ResponseWriter, r *http.Request, job func(context.Context) (*sweep.Report, error)) {
	report, err := job(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}
