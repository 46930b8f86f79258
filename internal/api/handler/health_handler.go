package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log *logger.Logger
}

func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn("readiness check failed", "error", err)
		common.RespondWithError(w, http.StatusServiceUnavailable, common.KindServiceUnavailable, "database unavailable")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
