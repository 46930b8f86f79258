package model

import (
	"time"
)

type CourseProgress struct {
	Course   CourseProjection `json:"course"`
	Lessons  []LessonView     `json:"lessons"`
	Progress ProgressSummary  `json:"progress"`
}

type StudentDashboardCourse struct {
	CourseID          string          `json:"courseId"`
	CourseTitle       string          `json:"courseTitle"`
	CourseDescription string          `json:"courseDescription"`
	CourseThumbnail   *string         `json:"courseThumbnail"`
	InstructorName    string          `json:"instructorName"`
	EnrolledAt        time.Time       `json:"enrolledAt"`
	Progress          ProgressSummary `json:"progress"`
}

type StudentDashboard struct {
	TotalEnrolledCourses int                      `json:"totalEnrolledCourses"`
	Courses              []StudentDashboardCourse `json:"courses"`
}

type StudentProgress struct {
	Student    UserSummary     `json:"student"`
	EnrolledAt time.Time       `json:"enrolledAt"`
	Progress   ProgressSummary `json:"progress"`
}

type InstructorDashboardCourse struct {
	CourseID          string            `json:"courseId"`
	CourseTitle       string            `json:"courseTitle"`
	CourseDescription string            `json:"courseDescription"`
	CourseThumbnail   *string           `json:"courseThumbnail"`
	TotalLessons      int               `json:"totalLessons"`
	TotalStudents     int               `json:"totalStudents"`
	Students          []StudentProgress `json:"students"`
}

type InstructorDashboard struct {
	TotalCourses  int                         `json:"totalCourses"`
	TotalStudents int                         `json:"totalStudents"`
	Courses       []InstructorDashboardCourse `json:"courses"`
}

// EnrolledCourse is one entry of a student's "my courses" listing.
type EnrolledCourse struct {
	EnrollmentID string           `json:"enrollmentId"`
	EnrolledAt   time.Time        `json:"enrolledAt"`
	Course       CourseProjection `json:"course"`
	Progress     ProgressSummary  `json:"progress"`
}
