package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden access")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrSelfEnrollment     = errors.New("instructors cannot enroll in their own course")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. object storage down
)

// Kind is the stable machine-readable error code sent to clients.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotEnrolled        Kind = "NOT_ENROLLED"
	KindAlreadyEnrolled    Kind = "ALREADY_ENROLLED"
	KindSelfEnrollment     Kind = "SELF_ENROLLMENT_DENIED"
	KindValidation         Kind = "VALIDATION_FAILED"
	KindConflict           Kind = "CONFLICT"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindInternal           Kind = "INTERNAL"
)

// Order matters: the specific enrollment errors are checked before the generic ones.
var kinds = []struct {
	err    error
	kind   Kind
	status int
}{
	{ErrNotEnrolled, KindNotEnrolled, http.StatusForbidden},
	{ErrSelfEnrollment, KindSelfEnrollment, http.StatusForbidden},
	{ErrAlreadyEnrolled, KindAlreadyEnrolled, http.StatusConflict},
	{ErrNotFound, KindNotFound, http.StatusNotFound},
	{ErrUnauthenticated, KindUnauthenticated, http.StatusUnauthorized},
	{ErrForbidden, KindForbidden, http.StatusForbidden},
	{ErrValidation, KindValidation, http.StatusBadRequest},
	{ErrBadRequest, KindBadRequest, http.StatusBadRequest},
	{ErrConflict, KindConflict, http.StatusConflict},
	{ErrServiceUnavailable, KindServiceUnavailable, http.StatusServiceUnavailable},
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	if IsUniqueViolation(err) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// KindFromError maps domain errors to their stable code.
func KindFromError(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	if IsUniqueViolation(err) {
		return KindConflict
	}
	return KindInternal
}

// IsUniqueViolation reports whether err carries a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
