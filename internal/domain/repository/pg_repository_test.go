package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/database"
	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	testDBOnce sync.Once
	testDB     *sql.DB
	testDBErr  error
)

// pgDB returns a migrated database from TEST_POSTGRES_DSN, skipping when unset.
func pgDB(tb testing.TB) *sql.DB {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set; skipping postgres repository tests")
	}
	testDBOnce.Do(func() {
		if testDBErr = database.Migrate(dsn, database.DirectionUp); testDBErr != nil {
			return
		}
		testDB, testDBErr = sql.Open("pgx", dsn)
		if testDBErr == nil {
			testDBErr = testDB.Ping()
		}
	})
	if testDBErr != nil {
		tb.Fatalf("postgres unavailable: %v", testDBErr)
	}
	if _, err := testDB.Exec(`TRUNCATE users, courses, lessons, enrollments, progress CASCADE`); err != nil {
		tb.Fatalf("truncate: %v", err)
	}
	return testDB
}

type pgFixture struct {
	users       UserRepository
	courses     CourseRepository
	lessons     LessonRepository
	enrollments EnrollmentRepository
	progress    ProgressRepository
}

func newPgFixture(db *sql.DB) pgFixture {
	return pgFixture{
		users:       NewPgUserRepository(db),
		courses:     NewPgCourseRepository(db),
		lessons:     NewPgLessonRepository(db),
		enrollments: NewPgEnrollmentRepository(db),
		progress:    NewPgProgressRepository(db),
	}
}

func seedUser(tb testing.TB, f pgFixture, name string, role model.Role) *model.User {
	tb.Helper()
	u := &model.User{ID: uuid.NewString(), Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	if err := f.users.Create(context.Background(), u); err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func seedCourse(tb testing.TB, f pgFixture, instructorID string) *model.Course {
	tb.Helper()
	c := &model.Course{ID: uuid.NewString(), Slug: "course-" + uuid.NewString()[:8], Title: "Algebra I",
		Description: "Linear equations and more", InstructorID: instructorID}
	if err := f.courses.Create(context.Background(), nil, c); err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func seedLesson(tb testing.TB, f pgFixture, courseID string, order int) *model.Lesson {
	tb.Helper()
	l := &model.Lesson{ID: uuid.NewString(), CourseID: courseID, Title: "Lesson", ContentType: model.ContentTypeVideo,
		ContentURL: "http://media/x.mp4", Order: order}
	if err := f.lessons.Create(context.Background(), nil, l); err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func TestPgEnrollmentUniqueness(t *testing.T) {
	f := newPgFixture(pgDB(t))
	ctx := context.Background()
	inst := seedUser(t, f, "Ina", model.RoleInstructor)
	stud := seedUser(t, f, "Sam", model.RoleStudent)
	c := seedCourse(t, f, inst.ID)

	e := &model.Enrollment{ID: uuid.NewString(), StudentID: stud.ID, CourseID: c.ID, EnrolledAt: time.Now()}
	if err := f.enrollments.Create(ctx, nil, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := &model.Enrollment{ID: uuid.NewString(), StudentID: stud.ID, CourseID: c.ID, EnrolledAt: time.Now()}
	if err := f.enrollments.Create(ctx, nil, dup); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("duplicate enrollment err = %v, want ErrConflict", err)
	}
	ok, err := f.enrollments.Exists(ctx, stud.ID, c.ID)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
}

func TestPgToggleFlipsAndClearsTimestamp(t *testing.T) {
	f := newPgFixture(pgDB(t))
	ctx := context.Background()
	inst := seedUser(t, f, "Ina", model.RoleInstructor)
	stud := seedUser(t, f, "Sam", model.RoleStudent)
	c := seedCourse(t, f, inst.ID)
	l := seedLesson(t, f, c.ID, 1)

	want := []bool{true, false, true}
	for i, w := range want {
		p, err := f.progress.Toggle(ctx, stud.ID, l.ID, time.Now())
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if p.IsCompleted != w || (p.CompletedAt != nil) != w {
			t.Fatalf("toggle %d: completed=%v at=%v", i, p.IsCompleted, p.CompletedAt)
		}
	}
	n, err := f.progress.CountCompleted(ctx, stud.ID, c.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountCompleted = %d, %v", n, err)
	}
}

func TestPgCourseDeleteCascades(t *testing.T) {
	db := pgDB(t)
	f := newPgFixture(db)
	ctx := context.Background()
	inst := seedUser(t, f, "Ina", model.RoleInstructor)
	stud := seedUser(t, f, "Sam", model.RoleStudent)
	c := seedCourse(t, f, inst.ID)
	l1 := seedLesson(t, f, c.ID, 1)
	seedLesson(t, f, c.ID, 1)
	if err := f.enrollments.Create(ctx, nil, &model.Enrollment{ID: uuid.NewString(), StudentID: stud.ID, CourseID: c.ID, EnrolledAt: time.Now()}); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := f.progress.Toggle(ctx, stud.ID, l1.ID, time.Now()); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := NewTransactor(db).WithinTx(ctx, func(tx *sql.Tx) error {
		return f.courses.Delete(ctx, tx, c.ID)
	}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, table := range []string{"lessons", "enrollments", "progress"} {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Fatalf("%s has %d orphaned rows", table, n)
		}
	}
	if _, err := f.courses.FindByID(ctx, nil, c.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("FindByID after delete err = %v", err)
	}
}

func TestPgLessonsSortedWithTies(t *testing.T) {
	f := newPgFixture(pgDB(t))
	ctx := context.Background()
	inst := seedUser(t, f, "Ina", model.RoleInstructor)
	c := seedCourse(t, f, inst.ID)
	third := seedLesson(t, f, c.ID, 10)
	first := seedLesson(t, f, c.ID, 0)
	second := seedLesson(t, f, c.ID, 0)

	lessons, err := f.lessons.ListByCourse(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListByCourse: %v", err)
	}
	got := []string{lessons[0].ID, lessons[1].ID, lessons[2].ID}
	want := []string{first.ID, second.ID, third.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}

	summary, err := f.courses.GetSummary(ctx, c.ID)
	if err != nil || summary.LessonCount != 3 || summary.Instructor.Name != "Ina" {
		t.Fatalf("summary = %+v, %v", summary, err)
	}
}

func TestPgInvalidIDIsNotFound(t *testing.T) {
	f := newPgFixture(pgDB(t))
	if _, err := f.courses.FindByID(context.Background(), nil, "not-a-uuid"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
