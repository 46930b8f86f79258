package service

import (
	"context"
	"fmt"

	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// dashboardFanOut bounds concurrent per-course queries on the instructor dashboard.
const dashboardFanOut = 4

type DashboardService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	progress       progressCalculator
	log            *logger.Logger
}

func NewDashboardService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	enrollmentRepo repository.EnrollmentRepository,
	progressRepo repository.ProgressRepository,
	log *logger.Logger,
) *DashboardService {
	return &DashboardService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progress:       progressCalculator{lessonRepo: lessonRepo, progressRepo: progressRepo},
		log:            log.With("service", "dashboard"),
	}
}

// Student rolls up progress for every enrollment the student holds.
// Any failure is returned; a partial dashboard is never produced.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*model.StudentDashboard, error) {
	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	dash := &model.StudentDashboard{
		TotalEnrolledCourses: len(enrollments),
		Courses:              make([]model.StudentDashboardCourse, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		summary, err := s.progress.summary(ctx, studentID, e.Course.ID)
		if err != nil {
			return nil, fmt.Errorf("progress for course %s: %w", e.Course.ID, err)
		}
		dash.Courses = append(dash.Courses, model.StudentDashboardCourse{
			CourseID:          e.Course.ID,
			CourseTitle:       e.Course.Title,
			CourseDescription: e.Course.Description,
			CourseThumbnail:   e.Course.Thumbnail,
			InstructorName:    e.Course.InstructorName,
			EnrolledAt:        e.EnrolledAt,
			Progress:          summary,
		})
	}
	return dash, nil
}

// Instructor computes, for each owned course, every enrolled student's progress.
// Each (student, course) pair is computed on its own.
func (s *DashboardService) Instructor(ctx context.Context, instructorID string) (*model.InstructorDashboard, error) {
	courses, err := s.courseRepo.ListSummariesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	out := make([]model.InstructorDashboardCourse, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardFanOut)
	for i, c := range courses {
		g.Go(func() error {
			row, err := s.instructorCourse(gctx, c)
			if err != nil {
				return fmt.Errorf("course %s: %w", c.ID, err)
			}
			out[i] = *row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unique := make(map[string]struct{})
	for _, c := range out {
		for _, sp := range c.Students {
			unique[sp.Student.ID] = struct{}{}
		}
	}
	return &model.InstructorDashboard{
		TotalCourses:  len(out),
		TotalStudents: len(unique),
		Courses:       out,
	}, nil
}

func (s *DashboardService) instructorCourse(ctx context.Context, c model.CourseSummary) (*model.InstructorDashboardCourse, error) {
	students, err := s.enrollmentRepo.ListStudentsByCourse(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	row := &model.InstructorDashboardCourse{
		CourseID:          c.ID,
		CourseTitle:       c.Title,
		CourseDescription: c.Description,
		CourseThumbnail:   c.Thumbnail,
		TotalLessons:      c.LessonCount,
		TotalStudents:     len(students),
		Students:          make([]model.StudentProgress, 0, len(students)),
	}
	for _, st := range students {
		summary, err := s.progress.summary(ctx, st.Student.ID, c.ID)
		if err != nil {
			return nil, err
		}
		row.Students = append(row.Students, model.StudentProgress{
			Student:    st.Student,
			EnrolledAt: st.EnrolledAt,
			Progress:   summary,
		})
	}
	return row, nil
}
