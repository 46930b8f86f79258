package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"
)

type failingLessons struct {
	repository.LessonRepository
	err error
}

func (f failingLessons) CountByCourse(context.Context, string) (int, error) { return 0, f.err }

func TestStudentDashboard(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	algebra := env.course(t, instructor, "Algebra I")
	l1 := env.lesson(t, instructor, algebra.ID, "Numbers", 1)
	env.lesson(t, instructor, algebra.ID, "Variables", 2)
	env.lesson(t, instructor, algebra.ID, "Equations", 3)
	empty := env.course(t, instructor, "Coming soon")
	env.enroll(t, alice, algebra.ID)
	env.enroll(t, alice, empty.ID)
	env.toggle(t, alice, l1.ID)

	dash, err := env.dashboards.Student(env.ctx, alice.UserID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalEnrolledCourses != 2 || len(dash.Courses) != 2 {
		t.Fatalf("dashboard = %+v", dash)
	}
	byID := map[string]model.StudentDashboardCourse{}
	for _, c := range dash.Courses {
		byID[c.CourseID] = c
	}
	if got := byID[algebra.ID].Progress; got.Total != 3 || got.Completed != 1 || got.Percentage != 33 {
		t.Fatalf("algebra progress = %+v", got)
	}
	if got := byID[empty.ID].Progress; got.Total != 0 || got.Percentage != 0 || got.IsFullyCompleted {
		t.Fatalf("empty course progress = %+v", got)
	}
	if byID[algebra.ID].InstructorName != "ines" {
		t.Fatalf("instructor name = %q", byID[algebra.ID].InstructorName)
	}
}

func TestInstructorDashboard(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	bob := env.user(t, "bob", model.RoleStudent)

	first := env.course(t, instructor, "First")
	second := env.course(t, instructor, "Second")
	env.course(t, instructor, "Third")
	f1 := env.lesson(t, instructor, first.ID, "One", 1)
	env.lesson(t, instructor, first.ID, "Two", 2)

	env.enroll(t, alice, first.ID)
	env.enroll(t, bob, first.ID)
	env.enroll(t, alice, second.ID)
	env.toggle(t, alice, f1.ID)

	dash, err := env.dashboards.Instructor(env.ctx, instructor.UserID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalCourses != 3 {
		t.Fatalf("total courses = %d, want 3", dash.TotalCourses)
	}
	if dash.TotalStudents != 2 {
		t.Fatalf("total students = %d, want 2 distinct", dash.TotalStudents)
	}

	var row *model.InstructorDashboardCourse
	for i := range dash.Courses {
		if dash.Courses[i].CourseID == first.ID {
			row = &dash.Courses[i]
		}
	}
	if row == nil {
		t.Fatal("first course missing")
	}
	if row.TotalLessons != 2 || row.TotalStudents != 2 {
		t.Fatalf("row = %+v", row)
	}
	for _, sp := range row.Students {
		want := 0
		if sp.Student.ID == alice.UserID {
			want = 50
		}
		if sp.Progress.Percentage != want {
			t.Fatalf("%s progress = %d, want %d", sp.Student.Name, sp.Progress.Percentage, want)
		}
	}
}

func TestDashboardPropagatesErrors(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("lessons unavailable")
	dash := NewDashboardService(env.repos.Courses, failingLessons{env.repos.Lessons, boom}, env.repos.Enrollments, env.repos.Progress, logger.Nop())

	instructor := env.user(t, "ines", model.RoleInstructor)
	alice := env.user(t, "alice", model.RoleStudent)
	course := env.course(t, instructor, "Anything")
	env.enroll(t, alice, course.ID)

	if _, err := dash.Student(env.ctx, alice.UserID); !errors.Is(err, boom) {
		t.Fatalf("student err = %v, want %v", err, boom)
	}
	if _, err := dash.Instructor(env.ctx, instructor.UserID); !errors.Is(err, boom) {
		t.Fatalf("instructor err = %v, want %v", err, boom)
	}
}
