package service

import (
	"context"

	"github.com/Aman-Dixit07/Student-lms/internal/platform/broker"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"
)

// Routing keys for domain events.
const (
	EventEnrollmentCreated       = "enrollment.created"
	EventLessonCompletionToggled = "lesson.completion_toggled"
	EventCourseCompleted         = "course.completed"
	EventCourseDeleted           = "course.deleted"
)

type EnrollmentCreatedEvent struct {
	EnrollmentID string `json:"enrollmentId"`
	StudentID    string `json:"studentId"`
	CourseID     string `json:"courseId"`
}

type CompletionToggledEvent struct {
	StudentID   string `json:"studentId"`
	CourseID    string `json:"courseId"`
	LessonID    string `json:"lessonId"`
	IsCompleted bool   `json:"isCompleted"`
}

type CourseCompletedEvent struct {
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
	Total     int    `json:"total"`
}

type CourseDeletedEvent struct {
	CourseID     string `json:"courseId"`
	InstructorID string `json:"instructorId"`
}

// publish runs after commit. A broker failure is logged and never fails the request.
func publish(ctx context.Context, p broker.Publisher, log *logger.Logger, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		log.Warn("failed to publish event", "event", routingKey, "error", err)
	}
}
