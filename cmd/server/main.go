package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aman-Dixit07/Student-lms/internal/api"
	"github.com/Aman-Dixit07/Student-lms/internal/app/service"
	"github.com/Aman-Dixit07/Student-lms/internal/common/security"
	"github.com/Aman-Dixit07/Student-lms/internal/domain/repository"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/broker"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/config"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/database"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/kv"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		if err := serve(cfg, appLog); err != nil {
			appLog.Fatal("server stopped with error", "error", err)
		}
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ExitOnError)
		direction := fs.String("direction", database.DirectionUp, "migration direction: up or down")
		_ = fs.Parse(args)
		if err := database.Migrate(cfg.Database.DSN(), *direction); err != nil {
			appLog.Fatal("migration failed", "direction", *direction, "error", err)
		}
		appLog.Info("migrations applied", "direction", *direction)
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [serve | migrate -direction up|down]\n", os.Args[0])
		os.Exit(2)
	}
}

func serve(cfg *config.Config, appLog *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Apply Migrations
	if err := database.Migrate(cfg.Database.DSN(), database.DirectionUp); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	appLog.Info("Migrations applied.")

	// 4. Initialize Database
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	appLog.Info("Database connected.")

	// 5. Initialize Token Revocation (Redis when enabled)
	var denylist security.TokenDenylist = security.NewMemoryDenylist()
	if cfg.Redis.Enabled {
		rdb, err := kv.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		denylist = security.NewRedisDenylist(rdb)
		appLog.Info("Redis connected.", "addr", cfg.Redis.Addr)
	} else {
		appLog.Warn("Redis disabled; token revocation is kept in memory")
	}

	// 6. Initialize Event Publisher (RabbitMQ when enabled)
	var events broker.Publisher = broker.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		pub, err := broker.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, appLog)
		if err != nil {
			return err
		}
		events = pub
		appLog.Info("RabbitMQ connected.", "exchange", cfg.RabbitMQ.Exchange)
	}
	defer events.Close()

	// 7. Initialize Object Storage
	media, err := storage.NewMinIOStore(ctx, cfg.Storage, appLog)
	if err != nil {
		return err
	}
	appLog.Info("Object storage ready.", "bucket", cfg.Storage.Bucket)

	// 8. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	courseRepo := repository.NewPgCourseRepository(db)
	lessonRepo := repository.NewPgLessonRepository(db)
	enrollmentRepo := repository.NewPgEnrollmentRepository(db)
	progressRepo := repository.NewPgProgressRepository(db)
	tx := repository.NewTransactor(db)

	// 9. Initialize Services
	tokens := security.NewTokenManager([]byte(cfg.JWT.Secret), cfg.JWT.Expiration, cfg.JWT.CookieName)
	access := service.NewCourseAccess(courseRepo, enrollmentRepo)
	mediaService := service.NewMediaService(media, cfg.Upload.MaxSize)
	certificateService, err := service.NewCertificateService(userRepo, courseRepo, enrollmentRepo, lessonRepo, progressRepo, appLog)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Auth:         service.NewAuthService(userRepo, tokens, denylist, appLog),
		Courses:      service.NewCourseService(courseRepo, lessonRepo, progressRepo, access, mediaService, tx, events, appLog),
		Lessons:      service.NewLessonService(lessonRepo, progressRepo, access, mediaService, tx, appLog),
		Enrollments:  service.NewEnrollmentService(courseRepo, lessonRepo, enrollmentRepo, progressRepo, access, tx, events, appLog),
		Dashboards:   service.NewDashboardService(courseRepo, lessonRepo, enrollmentRepo, progressRepo, appLog),
		Certificates: certificateService,
		Tokens:       tokens,
		DB:           db,
		Log:          appLog,

		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
		CORSMaxAge:       cfg.CORS.MaxAge,
		CookieSecure:     cfg.JWT.CookieSecure,
		RequestTimeout:   cfg.Server.RequestTimeout,
		MaxUploadSize:    cfg.Upload.MaxSize,
	})

	// 10. Start HTTP Server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("Server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 11. Graceful Shutdown
	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", cfg.Server.Port, err)
	case <-ctx.Done():
	}

	appLog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	appLog.Info("Server stopped gracefully.")
	return nil
}
