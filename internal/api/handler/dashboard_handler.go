package handler

import (
	"net/http"

	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              *logger.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router, authed, student, instructor func(http.Handler) http.Handler) {
	r.Use(authed)
	r.With(student).Get("/student", h.student)
	r.With(instructor).Get("/instructor", h.instructor)
}

func (h *DashboardHandler) student(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	dash, err := h.dashboardService.Student(r.Context(), a.UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dash)
}

func (h *DashboardHandler) instructor(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	dash, err := h.dashboardService.Instructor(r.Context(), a.UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dash)
}
