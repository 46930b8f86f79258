package service

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	certWidth  = 1600
	certHeight = 1130
	certIssuer = "LearnNicely - Online Learning Platform"
)

type CertificateService struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	lessonRepo     repository.LessonRepository
	progressRepo   repository.ProgressRepository
	fonts          certificateFonts
	log            *logger.Logger
}

// certificateFonts holds parsed fonts. Faces cache glyphs and are not safe for
// concurrent use, so each render builds its own.
type certificateFonts struct {
	bold, regular *truetype.Font
}

type certificateFaces struct {
	title, heading, body, small font.Face
}

func loadCertificateFonts() (certificateFonts, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return certificateFonts{}, fmt.Errorf("failed to parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return certificateFonts{}, fmt.Errorf("failed to parse regular font: %w", err)
	}
	return certificateFonts{bold: bold, regular: regular}, nil
}

func (f certificateFonts) faces() certificateFaces {
	face := func(ft *truetype.Font, size float64) font.Face {
		return truetype.NewFace(ft, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	}
	return certificateFaces{
		title:   face(f.bold, 72),
		heading: face(f.bold, 56),
		body:    face(f.regular, 32),
		small:   face(f.regular, 24),
	}
}

type Certificate struct {
	StudentName string
	CourseTitle string
	IssuedAt    time.Time
	PNG         []byte
}

// Generate renders a completion certificate for an enrolled student who has
// completed every lesson. The issue date is the latest lesson completion, so
// repeated downloads produce the same certificate.
func (s *CertificateService) Generate(ctx context.Context, actor model.Actor, courseID string) (*Certificate, error) {
	course, err := s.courseRepo.FindByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollmentRepo.Exists(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, common.ErrNotEnrolled
	}

	lessons, err := s.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	rows, err := s.progressRepo.ListByStudentCourse(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	views, completed := personalize(lessons, rows)
	if !model.ComputeProgress(len(lessons), completed).IsFullyCompleted {
		return nil, fmt.Errorf("course not completed: %w", common.ErrForbidden)
	}
	var issued time.Time
	for _, v := range views {
		if v.CompletedAt != nil && v.CompletedAt.After(issued) {
			issued = *v.CompletedAt
		}
	}

	student, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	png, err := s.render(student.Name, course.Title, issued)
	if err != nil {
		return nil, err
	}
	s.log.Info("certificate issued", "student_id", student.ID, "course_id", course.ID)
	return &Certificate{StudentName: student.Name, CourseTitle: course.Title, IssuedAt: issued, PNG: png}, nil
}

func (s *CertificateService) render(studentName, courseTitle string, issued time.Time) ([]byte, error) {
	dc := gg.NewContext(certWidth, certHeight)
	faces := s.fonts.faces()
	w, h := float64(certWidth), float64(certHeight)

	dc.SetColor(color.RGBA{R: 0xfd, G: 0xfb, B: 0xf5, A: 0xff})
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// Double border
	dc.SetColor(color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff})
	dc.SetLineWidth(12)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()
	dc.SetLineWidth(3)
	dc.DrawRectangle(70, 70, w-140, h-140)
	dc.Stroke()

	dc.SetFontFace(faces.title)
	dc.DrawStringAnchored("Certificate of Completion", w/2, 240, 0.5, 0.5)

	dc.SetColor(color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff})
	dc.SetFontFace(faces.body)
	dc.DrawStringAnchored("This is to certify that", w/2, 380, 0.5, 0.5)

	dc.SetColor(color.Black)
	dc.SetFontFace(faces.heading)
	dc.DrawStringAnchored(studentName, w/2, 480, 0.5, 0.5)

	dc.SetColor(color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff})
	dc.SetFontFace(faces.body)
	dc.DrawStringAnchored("has successfully completed the course", w/2, 580, 0.5, 0.5)

	dc.SetColor(color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff})
	dc.SetFontFace(faces.heading)
	dc.DrawStringWrapped(courseTitle, w/2, 680, 0.5, 0.5, w-300, 1.3, gg.AlignCenter)

	dc.SetColor(color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff})
	dc.SetFontFace(faces.small)
	dc.DrawStringAnchored("Issued on "+issued.Format("January 2, 2006"), w/2, 880, 0.5, 0.5)
	dc.DrawStringAnchored(certIssuer, w/2, 960, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
