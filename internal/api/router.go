package api

import (
	"net/http"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/api/handler"
	"github.com/Aman-Dixit07/Student-lms/internal/api/middleware"
	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common/security"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/model"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Auth         *service.AuthService
	Courses      *service.CourseService
	Lessons      *service.LessonService
	Enrollments  *service.EnrollmentService
	Dashboards   *service.DashboardService
	Certificates *service.CertificateService
	Tokens       *security.TokenManager
	DB           handler.Pinger
	Log          *logger.Logger

	AllowedOrigins   []string
	AllowCredentials bool
	CORSMaxAge       int
	CookieSecure     bool
	RequestTimeout   time.Duration
	MaxUploadSize    int64
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Recovery(d.Log))
	if d.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(d.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: d.AllowCredentials,
		MaxAge:           d.CORSMaxAge,
	}))

	// Verifies a token from the Authorization header or the session cookie and
	// stores the result; routes decide whether one is required.
	r.Use(d.Tokens.Verifier())

	health := handler.NewHealthHandler(d.DB, d.Log)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)

	authed := middleware.Authenticator(d.Auth, d.Log)
	student := middleware.RequireRole(model.RoleStudent)
	instructor := middleware.RequireRole(model.RoleInstructor)

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(d.Auth, handler.CookieOptions{Name: d.Tokens.CookieName(), Secure: d.CookieSecure}, d.Log)
		api.Route("/auth", func(r chi.Router) {
			authHandler.RegisterRoutes(r, authed)
		})

		courseHandler := handler.NewCourseHandler(d.Courses, d.MaxUploadSize, d.Log)
		api.Route("/courses", func(r chi.Router) {
			courseHandler.RegisterRoutes(r, authed, instructor)
		})

		lessonHandler := handler.NewLessonHandler(d.Lessons, d.MaxUploadSize, d.Log)
		api.Route("/lessons", func(r chi.Router) {
			lessonHandler.RegisterRoutes(r, authed, instructor)
		})

		enrollmentHandler := handler.NewEnrollmentHandler(d.Enrollments, d.Certificates, d.Log)
		api.Route("/enrollments", func(r chi.Router) {
			enrollmentHandler.RegisterRoutes(r, authed, student)
		})

		dashboardHandler := handler.NewDashboardHandler(d.Dashboards, d.Log)
		api.Route("/dashboard", func(r chi.Router) {
			dashboardHandler.RegisterRoutes(r, authed, student, instructor)
		})
	})

	return r
}
