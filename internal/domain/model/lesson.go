package model

import (
	"sort"
	"time"
)

type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypePDF   ContentType = "pdf"
)

func (c ContentType) Valid() bool {
	return c == ContentTypeVideo || c == ContentTypePDF
}

type Lesson struct {
	ID          string      `json:"id"`
	CourseID    string      `json:"courseId"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	ContentType ContentType `json:"contentType"`
	ContentURL  string      `json:"contentUrl"`
	Thumbnail   *string     `json:"thumbnail"`
	Order       int         `json:"order"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// LessonView is a lesson personalised with the viewer's completion state.
type LessonView struct {
	Lesson
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}

// SortLessons orders lessons by Order, breaking ties by creation time then id.
// Gaps and duplicate orders are allowed.
func SortLessons(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// LessonDetail is a single lesson with its parent course projection.
type LessonDetail struct {
	LessonView
	Course CourseProjection `json:"course"`
}
