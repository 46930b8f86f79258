package service

import (
	"errors"
	"strings"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
)

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

// trimmed returns a trimmed copy of an optional field so the caller's value is untouched.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
