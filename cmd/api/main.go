package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/odontoware/clinic-api/internal/config"
	"github.com/odontoware/clinic-api/internal/email"
	"github.com/odontoware/clinic-api/internal/handler"
	appointmenthandler "github.com/odontoware/clinic-api/internal/handler/appointment"
	authhandler "github.com/odontoware/clinic-api/internal/handler/auth"
	doctorhandler "github.com/odontoware/clinic-api/internal/handler/doctor"
	healthhandler "github.com/odontoware/clinic-api/internal/handler/health"
	orghandler "github.com/odontoware/clinic-api/internal/handler/organization"
	patienthandler "github.com/odontoware/clinic-api/internal/handler/patient"
	"github.com/odontoware/clinic-api/internal/middleware"
	"github.com/odontoware/clinic-api/internal/repository/postgres"
	"github.com/odontoware/clinic-api/internal/router"
	appointmentsvc "github.com/odontoware/clinic-api/internal/service/appointment"
	authsvc "github.com/odontoware/clinic-api/internal/service/auth"
	doctorsvc "github.com/odontoware/clinic-api/internal/service/doctor"
	"github.com/odontoware/clinic-api/internal/service/notification"
	orgsvc "github.com/odontoware/clinic-api/internal/service/organization"
	patientsvc "github.com/odontoware/clinic-api/internal/service/patient"
	"github.com/odontoware/clinic-api/pkg/auth"
	"github.com/odontoware/clinic-api/pkg/logger"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal(fmt.Errorf("jwt secret is not set"), "refusing to start")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)

	tokens := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	emailSvc := email.NewSMTPService(cfg.SMTP)
	notifier := notification.NewService(emailSvc, patientRepo)

	organizationSvc := orgsvc.NewService(orgRepo)
	appointmentSvc := appointmentsvc.NewService(appointmentRepo, doctorRepo, notifier, cfg.Scheduling, log)

	handler.RegisterValidators()

	r := router.NewRouter(
		middleware.NewAuthMiddleware(tokens),
		healthhandler.NewHandler(db),
		authhandler.NewHandler(authsvc.NewService(organizationSvc, tokens)),
		orghandler.NewHandler(organizationSvc),
		doctorhandler.NewHandler(doctorsvc.NewService(doctorRepo)),
		patienthandler.NewHandler(patientsvc.NewService(patientRepo)),
		appointmenthandler.NewHandler(appointmentSvc),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			CORS:             middleware.DefaultCORSConfig(),
			Timeout:          cfg.Server.RequestTimeout,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
