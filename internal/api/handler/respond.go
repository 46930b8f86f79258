package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aman-Dixit07/Student-lms/internal/api/middleware"
	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// multipartMemory is how much of a multipart body is kept in memory; the rest spills to disk.
const multipartMemory = 32 << 20

// respondError writes the error response. Failures that map to 500 are logged with their full chain.
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	if common.HTTPStatusFromError(err) == http.StatusInternalServerError {
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	common.RespondWithAppError(w, err)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty: %w", common.ErrBadRequest)
		}
		return fmt.Errorf("invalid request payload: %w", common.ErrBadRequest)
	}
	return nil
}

// actor returns the authenticated caller. Routes using it sit behind middleware.Authenticator.
func actor(r *http.Request) (model.Actor, error) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return model.Actor{}, fmt.Errorf("authentication required: %w", common.ErrUnauthenticated)
	}
	return a, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// multipartForm parses a multipart body capped at maxBytes. The returned
// cleanup removes any spilled temp files.
func multipartForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, fmt.Errorf("upload exceeds %d bytes: %w", maxBytes, common.ErrBadRequest)
		}
		return func() {}, fmt.Errorf("invalid multipart form: %w", common.ErrBadRequest)
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// formValue returns a pointer to the field when the client sent it.
func formValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[field]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func formInt(r *http.Request, field string) (*int, error) {
	raw := formValue(r, field)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, common.NewValidationError(field, "must be an integer")
	}
	return &n, nil
}

// formFile opens an uploaded file if present. Callers close it via the returned io.Closer.
func formFile(r *http.Request, field string) (*service.Upload, io.Closer, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil, nil
	}
	header := r.MultipartForm.File[field][0]
	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	return &service.Upload{Field: field, Filename: header.Filename, Size: header.Size, Reader: f}, f, nil
}

type closers []io.Closer

func (c closers) Close() {
	for _, cl := range c {
		if cl != nil {
			_ = cl.Close()
		}
	}
}
