package handler

import (
	"net/http"

	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type LessonHandler struct {
	lessonService *service.LessonService
	maxUpload     int64
	log           *logger.Logger
}

func NewLessonHandler(lessonService *service.LessonService, maxUpload int64, log *logger.Logger) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, maxUpload: maxUpload, log: log}
}

// RegisterRoutes mounts lesson routes. Every route requires authentication.
func (h *LessonHandler) RegisterRoutes(r chi.Router, authed, instructor func(http.Handler) http.Handler) {
	r.Use(authed)
	r.Get("/course/{courseId}", h.listForCourse)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(instructor)
		r.Post("/course/{courseId}", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *LessonHandler) listForCourse(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	lessons, err := h.lessonService.ListForCourse(r.Context(), a, chi.URLParam(r, "courseId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

func (h *LessonHandler) get(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	lesson, err := h.lessonService.Get(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"lesson": lesson})
}

func (h *LessonHandler) create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	cleanup, err := multipartForm(w, r, h.maxUpload)
	defer cleanup()
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req service.CreateLessonRequest
	if v := formValue(r, "title"); v != nil {
		req.Title = *v
	}
	req.Description = formValue(r, "description")
	if v := formValue(r, "contentType"); v != nil {
		req.ContentType = *v
	}
	order, err := formInt(r, "order")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if order != nil {
		req.Order = *order
	}

	var files closers
	defer func() { files.Close() }()
	if model.ContentType(req.ContentType).Valid() {
		content, c, err := formFile(r, req.ContentType)
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		files = append(files, c)
		req.Content = content
	}
	thumb, c, err := formFile(r, "thumbnail")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	files = append(files, c)
	req.Thumbnail = thumb

	lesson, err := h.lessonService.Create(r.Context(), a, chi.URLParam(r, "courseId"), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Lesson created successfully",
		"lesson":  lesson,
	})
}

func (h *LessonHandler) update(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	cleanup, err := multipartForm(w, r, h.maxUpload)
	defer cleanup()
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	req := service.UpdateLessonRequest{
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
		ContentType: formValue(r, "contentType"),
	}
	if req.Order, err = formInt(r, "order"); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var files closers
	defer func() { files.Close() }()
	// The new file arrives under the field named by its content type.
	for _, field := range []string{string(model.ContentTypeVideo), string(model.ContentTypePDF)} {
		if req.ContentType != nil && *req.ContentType != field {
			continue
		}
		content, c, err := formFile(r, field)
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		if content != nil {
			files = append(files, c)
			req.Content = content
			break
		}
	}
	thumb, c, err := formFile(r, "thumbnail")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	files = append(files, c)
	req.Thumbnail = thumb

	lesson, err := h.lessonService.Update(r.Context(), a, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Lesson updated successfully",
		"lesson":  lesson,
	})
}

func (h *LessonHandler) delete(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.lessonService.Delete(r.Context(), a, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Lesson deleted successfully"})
}
