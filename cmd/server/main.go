package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ptwell/clinic-scheduler/internal/config"
	"github.com/ptwell/clinic-scheduler/internal/database"
	"github.com/ptwell/clinic-scheduler/internal/handler"
	"github.com/ptwell/clinic-scheduler/internal/middleware"
	"github.com/ptwell/clinic-scheduler/internal/queue"
	"github.com/ptwell/clinic-scheduler/internal/repository"
	"github.com/ptwell/clinic-scheduler/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	delay := time.Duration(cfg.BootRetryDelayMS) * time.Millisecond
	db := openWithRetry(cfg, delay)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	err := database.Ensure(ctx, db)
	cancel()
	if err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// Repositories and handlers.
	users := repository.NewUserRepo(db)
	patients := repository.NewPatientRepo(db)
	therapists := repository.NewTherapistRepo(db)
	sessions := repository.NewSessionRepo(db)
	exercises := repository.NewExerciseRepo(db)
	metrics := repository.NewMetricsRepo(db)
	tokens := repository.NewTokenRepo(db)

	healthH := handler.NewHealthHandler(db)
	authH := handler.NewAuthHandler(cfg, users, patients, therapists, tokens)
	patientH := handler.NewPatientSessionHandler(sessions, patients, therapists, users)
	therapistH := handler.NewTherapistHandler(therapists, sessions, users)
	exerciseH := handler.NewExerciseHandler(exercises)
	adminH := handler.NewAdminHandler(metrics)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	corsCfg := echomw.DefaultCORSConfig
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	e.Use(echomw.CORSWithConfig(corsCfg))

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterPublic(e, healthH, therapistH, exerciseH)
	router.RegisterAuth(e, authH)
	router.RegisterPatient(e, patientH, cfg.JWTSecret)
	router.RegisterTherapist(e, therapistH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("session consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// openWithRetry dials the database until it answers, up to the configured
// number of boot attempts, then waits for it to accept queries. Exhausting
// either bound is fatal.
func openWithRetry(cfg config.Config, delay time.Duration) *sql.DB {
	var (
		db  *sql.DB
		err error
	)
	for attempt := 1; attempt <= cfg.BootRetries; attempt++ {
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err == nil {
			break
		}
		log.Printf("database not reachable (attempt %d/%d): %v", attempt, cfg.BootRetries, err)
		time.Sleep(delay)
	}
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.WaitFor(db, cfg.BootRetries, delay); err != nil {
		log.Fatalf("database never became ready: %v", err)
	}
	return db
}
