package http

import (
	"net/http"

	"checkout/internal/shared/config"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// HandleHealth reports liveness plus configuration presence per dependency.
// Credentials missing means the flow cannot work, so the whole answer
// degrades to 503 and the body names which side is unconfigured.
// GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	safe2payReady := h.cfg.Safe2PayReady()
	safewebReady := h.cfg.SafewebReady()

	status := http.StatusOK
	if !safe2payReady || !safewebReady {
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusOK {
		writeJSON(w, status, map[string]string{
			"safe2pay": configState(safe2payReady),
			"safeweb":  configState(safewebReady),
		})
		return
	}

	var missing []string
	if !safe2payReady {
		missing = append(missing, "safe2pay: "+configState(false))
	}
	if !safewebReady {
		missing = append(missing, "safeweb: "+configState(false))
	}
	writeError(w, status, "dependências não configuradas", missing...)
}

func configState(ready bool) string {
	if ready {
		return "configurado"
	}
	return "não configurado"
}
