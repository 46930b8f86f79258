package model

import (
	"time"
)

type Course struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Thumbnail    *string   `json:"thumbnail"`
	InstructorID string    `json:"instructorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Display projections, filled by joins.
	InstructorName string `json:"instructorName,omitempty"`
}

func (c *Course) IsOwnedBy(userID string) bool {
	return c != nil && c.InstructorID == userID
}

// CourseSummary is the public partial view of a course. It never includes lesson content.
type CourseSummary struct {
	ID              string      `json:"id"`
	Slug            string      `json:"slug"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Thumbnail       *string     `json:"thumbnail"`
	Instructor      UserSummary `json:"instructor"`
	LessonCount     int         `json:"lessonCount"`
	EnrollmentCount int         `json:"enrollmentCount"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// CourseProjection is the read-only course view returned alongside an enrollment.
type CourseProjection struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Thumbnail      *string `json:"thumbnail"`
	InstructorName string  `json:"instructorName"`
}

func (c *Course) Projection() CourseProjection {
	return CourseProjection{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Thumbnail:      c.Thumbnail,
		InstructorName: c.InstructorName,
	}
}

// CourseDetail is the full view handed to owners and enrolled students.
type CourseDetail struct {
	Course
	Lessons []LessonView `json:"lessons"`
}
