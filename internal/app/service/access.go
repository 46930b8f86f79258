package service

import (
	"context"
	"fmt"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
)

// CourseAccess answers whether a caller may see a course's full content.
// Nothing is cached; each call reads current ownership and enrollment.
type CourseAccess struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewCourseAccess(courseRepo repository.CourseRepository, enrollmentRepo repository.EnrollmentRepository) *CourseAccess {
	return &CourseAccess{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo}
}

type AccessGrant struct {
	Course     *model.Course
	IsOwner    bool
	IsEnrolled bool
}

// Authorize grants access to the owning instructor or an enrolled user.
// A missing course is reported before any access decision.
func (a *CourseAccess) Authorize(ctx context.Context, actor model.Actor, courseID string) (*AccessGrant, error) {
	course, err := a.courseRepo.FindByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course.IsOwnedBy(actor.UserID) {
		return &AccessGrant{Course: course, IsOwner: true}, nil
	}
	enrolled, err := a.enrollmentRepo.Exists(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, fmt.Errorf("you must enroll in this course to view its content: %w", common.ErrNotEnrolled)
	}
	return &AccessGrant{Course: course, IsEnrolled: true}, nil
}

// RequireOwner loads the course and fails unless actor created it.
func (a *CourseAccess) RequireOwner(ctx context.Context, actor model.Actor, courseID string) (*model.Course, error) {
	course, err := a.courseRepo.FindByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsOwnedBy(actor.UserID) {
		return nil, fmt.Errorf("only the course instructor can modify this course: %w", common.ErrForbidden)
	}
	return course, nil
}
