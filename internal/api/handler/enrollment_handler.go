package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
)

type EnrollmentHandler struct {
	enrollmentService  *service.EnrollmentService
	certificateService *service.CertificateService
	log                *logger.Logger
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, certificateService *service.CertificateService, log *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService, certificateService: certificateService, log: log}
}

// RegisterRoutes mounts enrollment routes. Enrolling is open to any authenticated
// caller so that owners get a self-enrollment error instead of a role error.
func (h *EnrollmentHandler) RegisterRoutes(r chi.Router, authed, student func(http.Handler) http.Handler) {
	r.Use(authed)
	r.Post("/{courseId}", h.enroll)
	r.Get("/course/{courseId}/status", h.status)
	r.Get("/course/{courseId}/progress", h.progress)
	r.Get("/course/{courseId}/certificate", h.certificate)
	r.Post("/lesson/{lessonId}/toggle", h.toggle)
	r.With(student).Get("/my-courses", h.myCourses)
}

func (h *EnrollmentHandler) enroll(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	res, err := h.enrollmentService.Enroll(r.Context(), a, chi.URLParam(r, "courseId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Successfully enrolled in course",
		"enrollment": res.Enrollment,
		"course":     res.Course,
	})
}

func (h *EnrollmentHandler) status(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	st, err := h.enrollmentService.Status(r.Context(), a, chi.URLParam(r, "courseId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, st)
}

func (h *EnrollmentHandler) myCourses(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	courses, err := h.enrollmentService.ListMyCourses(r.Context(), a)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"enrollments": courses})
}

type toggleResponse struct {
	Message string `json:"message"`
	model.CompletionState
}

func (h *EnrollmentHandler) toggle(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	state, err := h.enrollmentService.ToggleCompletion(r.Context(), a, chi.URLParam(r, "lessonId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	msg := "Lesson marked as incomplete"
	if state.IsCompleted {
		msg = "Lesson marked as complete"
	}
	common.RespondWithJSON(w, http.StatusOK, toggleResponse{Message: msg, CompletionState: *state})
}

func (h *EnrollmentHandler) progress(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	cp, err := h.enrollmentService.CourseProgress(r.Context(), a, chi.URLParam(r, "courseId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, cp)
}

func (h *EnrollmentHandler) certificate(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	cert, err := h.certificateService.Generate(r.Context(), a, chi.URLParam(r, "courseId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(cert.PNG)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-%s.png"`, slug.Make(cert.CourseTitle)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(cert.PNG); err != nil {
		h.log.Warn("failed to write certificate", "error", err)
	}
}
