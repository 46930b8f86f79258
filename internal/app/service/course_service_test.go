package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
)

func TestCreateCourse(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	student := env.user(t, "alice", model.RoleStudent)

	course, err := env.courses.Create(env.ctx, instructor, CreateCourseRequest{
		Title:       "  Linear Algebra  ",
		Description: "Vectors, matrices and more",
		Thumbnail:   upload("thumbnail", pngBytes),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if course.Title != "Linear Algebra" {
		t.Errorf("title = %q, want trimmed", course.Title)
	}
	if !strings.HasPrefix(course.Slug, "linear-algebra-") {
		t.Errorf("slug = %q", course.Slug)
	}
	if course.Thumbnail == nil || !strings.Contains(*course.Thumbnail, string(FolderCourseThumbnails)) {
		t.Errorf("thumbnail = %v", course.Thumbnail)
	}
	if course.InstructorName != "ines" {
		t.Errorf("instructor name = %q", course.InstructorName)
	}

	if _, err := env.courses.Create(env.ctx, student, CreateCourseRequest{Title: "Nope", Description: "Students cannot do this"}); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("student create err = %v, want forbidden", err)
	}

	_, err = env.courses.Create(env.ctx, instructor, CreateCourseRequest{Title: "ab", Description: "short"})
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if verr.Fields["title"] == "" || verr.Fields["description"] == "" {
		t.Fatalf("fields = %v, want title and description", verr.Fields)
	}
}

func TestSameTitleGetsDistinctSlugs(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	a := env.course(t, instructor, "Intro to Go")
	b := env.course(t, instructor, "Intro to Go")
	if a.Slug == b.Slug {
		t.Fatalf("slugs collide: %q", a.Slug)
	}
	got, err := env.courses.GetSummaryBySlug(env.ctx, b.Slug)
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if got.ID != b.ID {
		t.Fatalf("by slug id = %s, want %s", got.ID, b.ID)
	}
}

func TestPublicSummaryHidesContent(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	course := env.course(t, instructor, "Statistics")
	env.lesson(t, instructor, course.ID, "Mean", 1)
	env.lesson(t, instructor, course.ID, "Median", 2)
	env.enroll(t, alice, course.ID)

	list, err := env.courses.ListPublic(env.ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d courses, want 1", len(list))
	}
	s := list[0]
	if s.LessonCount != 2 || s.EnrollmentCount != 1 || s.Instructor.Name != "ines" {
		t.Fatalf("summary = %+v", s)
	}
}

func TestUpdateCourseOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	other := env.user(t, "otto", model.RoleInstructor)
	course := env.course(t, instructor, "Drawing")

	padded := []UpdateCourseRequest{
		{Title: strPtr("   ab   ")},
		{Description: strPtr("    short     ")},
		{Title: strPtr("     ")},
	}
	for _, req := range padded {
		if _, err := env.courses.Update(env.ctx, instructor, course.ID, req); !errors.Is(err, common.ErrValidation) {
			t.Fatalf("padded update %+v err = %v, want validation", req, err)
		}
	}

	title := "Drawing basics"
	if _, err := env.courses.Update(env.ctx, other, course.ID, UpdateCourseRequest{Title: &title}); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("other instructor err = %v, want forbidden", err)
	}
	updated, err := env.courses.Update(env.ctx, instructor, course.ID, UpdateCourseRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Description != course.Description {
		t.Fatalf("updated = %+v", updated)
	}

	updated, err = env.courses.Update(env.ctx, instructor, course.ID, UpdateCourseRequest{Title: strPtr("  Drawing again  ")})
	if err != nil {
		t.Fatalf("update with padding: %v", err)
	}
	if updated.Title != "Drawing again" {
		t.Fatalf("title = %q, want trimmed", updated.Title)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	bob := env.user(t, "bob", model.RoleStudent)

	course := env.course(t, instructor, "Music theory")
	keep := env.course(t, instructor, "Harmony")
	l1 := env.lesson(t, instructor, course.ID, "Scales", 1)
	l2 := env.lesson(t, instructor, course.ID, "Chords", 2)
	kept := env.lesson(t, instructor, keep.ID, "Voicing", 1)
	for _, s := range []model.Actor{alice, bob} {
		env.enroll(t, s, course.ID)
		env.toggle(t, s, l1.ID)
		env.toggle(t, s, l2.ID)
	}
	env.enroll(t, alice, keep.ID)
	env.toggle(t, alice, kept.ID)

	if err := env.courses.Delete(env.ctx, alice, course.ID); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("student delete err = %v, want forbidden", err)
	}
	if err := env.courses.Delete(env.ctx, instructor, course.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	lessons, enrollments, progress := env.store.Counts()
	if lessons != 1 || enrollments != 1 || progress != 1 {
		t.Fatalf("counts after delete = %d lessons, %d enrollments, %d progress; want 1 each", lessons, enrollments, progress)
	}
	if _, err := env.courses.GetSummary(env.ctx, course.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("get deleted err = %v, want not found", err)
	}
	if _, err := env.enrollments.ToggleCompletion(env.ctx, alice, l1.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("toggle deleted lesson err = %v, want not found", err)
	}
}

func TestListInstructorCourses(t *testing.T) {
	env := newTestEnv(t)
	ines := env.user(t, "ines", model.RoleInstructor)
	otto := env.user(t, "otto", model.RoleInstructor)
	env.course(t, ines, "Mine one")
	env.course(t, ines, "Mine two")
	env.course(t, otto, "Not mine")

	list, err := env.courses.ListInstructorCourses(env.ctx, ines)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d courses, want 2", len(list))
	}
	for _, c := range list {
		if c.Instructor.ID != ines.UserID {
			t.Fatalf("course %s belongs to %s", c.ID, c.Instructor.ID)
		}
	}
}

func strPtr(s string) *string { return &s }
