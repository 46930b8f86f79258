package model

import (
	"time"
)

type Enrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// EnrolledStudent is an enrollment joined with the student's public fields.
type EnrolledStudent struct {
	Student    UserSummary `json:"student"`
	EnrolledAt time.Time   `json:"enrolledAt"`
}

// StudentEnrollment is an enrollment joined with its course, as listed for a student.
type StudentEnrollment struct {
	EnrollmentID string    `json:"enrollmentId"`
	EnrolledAt   time.Time `json:"enrolledAt"`
	Course       Course    `json:"course"`
}
