package handler

import (
	"net/http"
	"time"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/jsonutil"
	"github.com/DimaBagZ/film-react-nest/internal/vcs"
)

const StatusMessage = "Film! API server is running"

type HealthcheckHandler struct {
	env string
	now func() time.Time
}

func NewHealthcheckHandler(env string) *HealthcheckHandler {
	return &HealthcheckHandler{
		env: env,
		now: time.Now,
	}
}

func (h *HealthcheckHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "UP",
		SystemInfo: api.SystemInfo{
			Version:     vcs.Version(),
			Environment: h.env,
		},
	}

	jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
}

// GetStatus answers GET / so load balancers and the frontend can probe the API.
func (h *HealthcheckHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := api.StatusResponse{
		Status:    "ok",
		Message:   StatusMessage,
		Timestamp: h.now().UTC(),
	}

	jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
}
