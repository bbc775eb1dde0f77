package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/autonope/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
)

// handleHealth returns a handler reporting liveness and how many targets
// are being watched
func handleHealth(targets int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "autonope",
			Version: types.Version,
			Targets: targets,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
		}
	}
}
