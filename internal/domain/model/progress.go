package model

import (
	"time"
)

// Progress is a student's completion state for one lesson.
// CompletedAt is non-nil iff IsCompleted.
type Progress struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId"`
	LessonID    string     `json:"lessonId"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProgressSummary is the (total, completed, percentage) triple for one student in one course.
type ProgressSummary struct {
	Total            int  `json:"total"`
	Completed        int  `json:"completed"`
	Percentage       int  `json:"percentage"`
	IsFullyCompleted bool `json:"isFullyCompleted"`
}

// ComputeProgress derives the completion percentage, rounded half up.
// A course without lessons is 0% and never fully completed. Fully completed
// means every lesson is done; with 200+ lessons the rounded percentage can
// reach 100 one lesson early, so it is not used for the flag.
func ComputeProgress(total, completed int) ProgressSummary {
	if completed < 0 {
		completed = 0
	}
	if total > 0 && completed > total {
		completed = total
	}
	summary := ProgressSummary{Total: total, Completed: completed}
	if total <= 0 {
		return summary
	}
	// round(100*k/n) with halves rounded up, in integer arithmetic.
	summary.Percentage = (200*completed + total) / (2 * total)
	summary.IsFullyCompleted = completed == total
	return summary
}

// CompletionState is the result of a toggle.
type CompletionState struct {
	LessonID    string     `json:"lessonId"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}
