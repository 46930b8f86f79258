package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common/security"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository/repotest"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/broker"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	mp4Bytes = append([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2"), make([]byte, 64)...)
)

func upload(field string, data []byte) *Upload {
	return &Upload{Field: field, Filename: field + ".bin", Size: int64(len(data)), Reader: bytes.NewReader(data)}
}

type memoryMedia struct {
	mu      sync.Mutex
	objects map[string]string
	fail    error
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{objects: make(map[string]string)}
}

func (m *memoryMedia) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = contentType
	return "https://cdn.test/" + key, nil
}

type recordedEvent struct {
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

var _ broker.Publisher = (*recordingPublisher)(nil)

type testEnv struct {
	store       *repotest.Store
	repos       repotest.Repositories
	media       *memoryMedia
	events      *recordingPublisher
	auth        *AuthService
	courses     *CourseService
	lessons     *LessonService
	enrollments *EnrollmentService
	dashboards  *DashboardService
	ctx         context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repotest.NewStore()
	repos := store.Repositories()
	log := logger.Nop()
	media := newMemoryMedia()
	events := &recordingPublisher{}

	access := NewCourseAccess(repos.Courses, repos.Enrollments)
	mediaSvc := NewMediaService(media, 1<<20)
	tokens := security.NewTokenManager([]byte("test-secret"), time.Hour, "")

	return &testEnv{
		store:       store,
		repos:       repos,
		media:       media,
		events:      events,
		auth:        NewAuthService(repos.Users, tokens, security.NewMemoryDenylist(), log),
		courses:     NewCourseService(repos.Courses, repos.Lessons, repos.Progress, access, mediaSvc, repos.Tx, events, log),
		lessons:     NewLessonService(repos.Lessons, repos.Progress, access, mediaSvc, repos.Tx, log),
		enrollments: NewEnrollmentService(repos.Courses, repos.Lessons, repos.Enrollments, repos.Progress, access, repos.Tx, events, log),
		dashboards:  NewDashboardService(repos.Courses, repos.Lessons, repos.Enrollments, repos.Progress, log),
		ctx:         context.Background(),
	}
}

func (e *testEnv) user(t *testing.T, name string, role model.Role) model.Actor {
	t.Helper()
	res, err := e.auth.Signup(e.ctx, SignupRequest{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "secret123",
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	return model.Actor{UserID: res.User.ID, Role: res.User.Role}
}

func (e *testEnv) course(t *testing.T, owner model.Actor, title string) *model.Course {
	t.Helper()
	c, err := e.courses.Create(e.ctx, owner, CreateCourseRequest{Title: title, Description: "A course about " + title})
	if err != nil {
		t.Fatalf("create course %q: %v", title, err)
	}
	return c
}

func (e *testEnv) lesson(t *testing.T, owner model.Actor, courseID, title string, order int) *model.Lesson {
	t.Helper()
	l, err := e.lessons.Create(e.ctx, owner, courseID, CreateLessonRequest{
		Title:       title,
		ContentType: string(model.ContentTypePDF),
		Order:       order,
		Content:     upload("pdf", pdfBytes),
	})
	if err != nil {
		t.Fatalf("create lesson %q: %v", title, err)
	}
	return l
}

func (e *testEnv) enroll(t *testing.T, student model.Actor, courseID string) {
	t.Helper()
	if _, err := e.enrollments.Enroll(e.ctx, student, courseID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}

func (e *testEnv) toggle(t *testing.T, student model.Actor, lessonID string) *model.CompletionState {
	t.Helper()
	state, err := e.enrollments.ToggleCompletion(e.ctx, student, lessonID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	return state
}
