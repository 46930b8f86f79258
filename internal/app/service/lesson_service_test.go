package service

import (
	"errors"
	"testing"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
)

func TestCreateLessonValidatesContent(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	other := env.user(t, "otto", model.RoleInstructor)
	course := env.course(t, instructor, "Film studies")

	video, err := env.lessons.Create(env.ctx, instructor, course.ID, CreateLessonRequest{
		Title:       "Opening scene",
		ContentType: "video",
		Order:       1,
		Content:     upload("video", mp4Bytes),
		Thumbnail:   upload("thumbnail", pngBytes),
	})
	if err != nil {
		t.Fatalf("create video lesson: %v", err)
	}
	if video.Thumbnail == nil {
		t.Fatal("thumbnail not stored")
	}

	tests := []struct {
		name  string
		actor model.Actor
		req   CreateLessonRequest
		want  error
	}{
		{"bad content type", instructor, CreateLessonRequest{Title: "Lesson", ContentType: "audio", Content: upload("audio", pdfBytes)}, common.ErrValidation},
		{"missing file", instructor, CreateLessonRequest{Title: "Lesson", ContentType: "pdf"}, common.ErrValidation},
		{"pdf declared as video", instructor, CreateLessonRequest{Title: "Lesson", ContentType: "video", Content: upload("video", pdfBytes)}, common.ErrValidation},
		{"text declared as pdf", instructor, CreateLessonRequest{Title: "Lesson", ContentType: "pdf", Content: upload("pdf", []byte("just some text"))}, common.ErrValidation},
		{"short title", instructor, CreateLessonRequest{Title: "ab", ContentType: "pdf", Content: upload("pdf", pdfBytes)}, common.ErrValidation},
		{"not the owner", other, CreateLessonRequest{Title: "Lesson", ContentType: "pdf", Content: upload("pdf", pdfBytes)}, common.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.lessons.Create(env.ctx, tt.actor, course.ID, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if lessons, _, _ := env.store.Counts(); lessons != 1 {
		t.Fatalf("lessons = %d, want 1", lessons)
	}
}

func TestMediaStoreFailureIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	course := env.course(t, instructor, "Networks")
	env.media.fail = errors.New("connection refused")

	_, err := env.lessons.Create(env.ctx, instructor, course.ID, CreateLessonRequest{
		Title: "Packets", ContentType: "pdf", Content: upload("pdf", pdfBytes),
	})
	if !errors.Is(err, common.ErrServiceUnavailable) {
		t.Fatalf("err = %v, want service unavailable", err)
	}
}

func TestLessonAccess(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	course := env.course(t, instructor, "Astronomy")
	late := env.lesson(t, instructor, course.ID, "Galaxies", 5)
	early := env.lesson(t, instructor, course.ID, "Planets", 1)

	if _, err := env.lessons.Get(env.ctx, alice, early.ID); !errors.Is(err, common.ErrNotEnrolled) {
		t.Fatalf("get before enroll err = %v, want not enrolled", err)
	}
	if _, err := env.lessons.ListForCourse(env.ctx, alice, course.ID); !errors.Is(err, common.ErrNotEnrolled) {
		t.Fatalf("list before enroll err = %v, want not enrolled", err)
	}

	env.enroll(t, alice, course.ID)
	env.toggle(t, alice, early.ID)

	views, err := env.lessons.ListForCourse(env.ctx, alice, course.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 || views[0].ID != early.ID || views[1].ID != late.ID {
		t.Fatalf("lesson order = %+v", views)
	}
	if !views[0].IsCompleted || views[1].IsCompleted {
		t.Fatalf("completion flags = %v, %v", views[0].IsCompleted, views[1].IsCompleted)
	}

	detail, err := env.lessons.Get(env.ctx, alice, early.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !detail.IsCompleted || detail.Course.ID != course.ID {
		t.Fatalf("detail = %+v", detail)
	}

	owner, err := env.lessons.Get(env.ctx, instructor, late.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if owner.IsCompleted {
		t.Fatal("owner should see no completion")
	}
}

func TestUpdateLesson(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	course := env.course(t, instructor, "Economics")
	lesson := env.lesson(t, instructor, course.ID, "Supply", 1)

	if _, err := env.lessons.Update(env.ctx, instructor, lesson.ID, UpdateLessonRequest{Title: strPtr("  x  ")}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("padded title err = %v, want validation", err)
	}
	renamed, err := env.lessons.Update(env.ctx, instructor, lesson.ID, UpdateLessonRequest{Title: strPtr("  Demand  ")})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Title != "Demand" {
		t.Fatalf("title = %q, want trimmed", renamed.Title)
	}

	video := "video"
	if _, err := env.lessons.Update(env.ctx, instructor, lesson.ID, UpdateLessonRequest{ContentType: &video}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("type change without file err = %v, want validation", err)
	}

	order := 7
	updated, err := env.lessons.Update(env.ctx, instructor, lesson.ID, UpdateLessonRequest{
		ContentType: &video,
		Content:     upload("video", mp4Bytes),
		Order:       &order,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ContentType != model.ContentTypeVideo || updated.Order != 7 || updated.ContentURL == lesson.ContentURL {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestDeleteLessonRemovesProgress(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	course := env.course(t, instructor, "Poetry")
	l1 := env.lesson(t, instructor, course.ID, "Sonnets", 1)
	l2 := env.lesson(t, instructor, course.ID, "Haiku", 2)
	env.enroll(t, alice, course.ID)
	env.toggle(t, alice, l1.ID)
	env.toggle(t, alice, l2.ID)

	if err := env.lessons.Delete(env.ctx, alice, l1.ID); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("student delete err = %v, want forbidden", err)
	}
	if err := env.lessons.Delete(env.ctx, instructor, l1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, progress := env.store.Counts(); progress != 1 {
		t.Fatalf("progress rows = %d, want 1", progress)
	}
	assertProgress(t, env, alice, course.ID, 1, 1, 100, true)
}
