package handler

import (
	"net/http"

	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type CourseHandler struct {
	courseService *service.CourseService
	maxUpload     int64
	log           *logger.Logger
}

func NewCourseHandler(courseService *service.CourseService, maxUpload int64, log *logger.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, maxUpload: maxUpload, log: log}
}

// RegisterRoutes mounts course routes. authed enforces authentication, instructor the INSTRUCTOR role on top.
func (h *CourseHandler) RegisterRoutes(r chi.Router, authed, instructor func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/slug/{slug}", h.getBySlug)

	r.Group(func(r chi.Router) {
		r.Use(authed)
		r.Get("/{id}/full", h.getFull)

		r.Group(func(r chi.Router) {
			r.Use(instructor)
			r.Get("/instructor/my-courses", h.listMine)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})

	r.Get("/{id}", h.get)
}

func (h *CourseHandler) list(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListPublic(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"course": course})
}

func (h *CourseHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetSummaryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"course": course})
}

func (h *CourseHandler) getFull(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	course, err := h.courseService.GetFull(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"course": course})
}

func (h *CourseHandler) listMine(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	courses, err := h.courseService.ListInstructorCourses(r.Context(), a)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req service.CreateCourseRequest
	var files closers
	defer func() { files.Close() }()
	if isMultipart(r) {
		cleanup, err := multipartForm(w, r, h.maxUpload)
		defer cleanup()
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		if v := formValue(r, "title"); v != nil {
			req.Title = *v
		}
		if v := formValue(r, "description"); v != nil {
			req.Description = *v
		}
		thumb, c, err := formFile(r, "thumbnail")
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		files = append(files, c)
		req.Thumbnail = thumb
	} else if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	course, err := h.courseService.Create(r.Context(), a, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Course created successfully",
		"course":  course,
	})
}

func (h *CourseHandler) update(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req service.UpdateCourseRequest
	var files closers
	defer func() { files.Close() }()
	if isMultipart(r) {
		cleanup, err := multipartForm(w, r, h.maxUpload)
		defer cleanup()
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		req.Title = formValue(r, "title")
		req.Description = formValue(r, "description")
		thumb, c, err := formFile(r, "thumbnail")
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		files = append(files, c)
		req.Thumbnail = thumb
	} else if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	course, err := h.courseService.Update(r.Context(), a, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Course updated successfully",
		"course":  course,
	})
}

func (h *CourseHandler) delete(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.courseService.Delete(r.Context(), a, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Course deleted successfully"})
}
