package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/careermate/careermate/internal/activity"
	api "github.com/careermate/careermate/internal/api/http"
	auth "github.com/careermate/careermate/internal/auth/middleware"
	"github.com/careermate/careermate/internal/config"
	"github.com/careermate/careermate/internal/db"
	"github.com/careermate/careermate/internal/feedback"
	"github.com/careermate/careermate/internal/jobs"
	"github.com/careermate/careermate/internal/questionbank"
	"github.com/careermate/careermate/internal/rbac"
	"github.com/careermate/careermate/internal/scoring"
	"github.com/careermate/careermate/internal/seed"
	"github.com/careermate/careermate/internal/session"
	"github.com/careermate/careermate/internal/storage"
	"github.com/careermate/careermate/internal/users"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if cfg.SeedPath != "" {
		if f, err := seed.Load(cfg.SeedPath); err != nil {
			if !os.IsNotExist(err) {
				log.Fatalf("seed load failed: %v", err)
			}
		} else if err := seed.Apply(ctx, dbh, f); err != nil {
			log.Fatalf("seed apply failed: %v", err)
		}
	}

	// --- Stores & services ---
	userStore := users.NewStore(dbh)
	if err := userStore.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}
	jobStore := jobs.NewStore(dbh)
	bank := questionbank.NewSQLStore(dbh)
	events := activity.NewLog(dbh)

	var gen feedback.Generator
	var assistant api.Chatter
	if cfg.OpenAIKey != "" {
		a, err := feedback.NewAssistant(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("assistant: %v", err)
		}
		gen = a
		assistant = a
	}

	scorer := scoring.NewHeuristicScorer()
	sessions := session.NewService(
		session.NewSQLStore(dbh), bank, scorer, gen,
		session.Config{InterviewQuestions: cfg.InterviewQuestions, TestQuestions: cfg.TestQuestions},
	)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/signup", api.SignupHandler(userStore, authSvc, events))
	r.Post("/auth/login", api.LoginHandler(userStore, authSvc, events))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		pr.With(rbac.Require("career:view")).Get("/careers", api.ListCareersHandler(jobStore))
		pr.With(rbac.Require("career:create")).Post("/careers", api.CreateCareerHandler(jobStore))

		pr.With(rbac.Require("job:view")).Get("/jobs", api.ListJobsHandler(jobStore))
		pr.With(rbac.Require("job:view")).Get("/jobs/{jobID}", api.GetJobHandler(jobStore))
		pr.With(rbac.Require("job:apply")).Post("/jobs/{jobID}/apply", api.ApplyJobHandler(jobStore, events))
		pr.With(rbac.Require("job:create")).Post("/jobs", api.CreateJobHandler(jobStore))

		pr.With(rbac.Require("question:create")).Post("/questions", api.CreateQuestionHandler(bank))

		// Interview flow
		pr.With(rbac.Require("interview:start")).
			Post("/interviews", api.StartInterviewHandler(sessions, events))
		pr.With(rbac.Require("interview:view")).
			Get("/interviews/active", api.ActiveInterviewHandler(sessions))
		pr.With(rbac.Require("interview:view")).
			Get("/interviews/{sessionID}", api.GetInterviewHandler(sessions))
		pr.With(rbac.Require("interview:view")).
			Get("/interviews/{sessionID}/question", api.CurrentInterviewQuestionHandler(sessions))
		pr.With(rbac.Require("interview:answer")).
			Post("/interviews/{sessionID}/answers", api.SubmitInterviewAnswerHandler(sessions, events))
		pr.With(rbac.Require("interview:answer")).
			Post("/interviews/{sessionID}/finish", api.FinishInterviewHandler(sessions, events))

		// Test flow: unlike interviews, tests end with an explicit finish call.
		pr.With(rbac.Require("test:start")).
			Post("/tests", api.StartTestHandler(sessions, events))
		pr.With(rbac.Require("test:view")).
			Get("/tests/active", api.ActiveTestHandler(sessions))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{sessionID}/question", api.CurrentTestQuestionHandler(sessions))
		pr.With(rbac.Require("test:answer")).
			Post("/tests/{sessionID}/answers", api.SubmitTestAnswerHandler(sessions))
		pr.With(rbac.Require("test:answer")).
			Post("/tests/{sessionID}/finish", api.FinishTestHandler(sessions, events))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{sessionID}/results", api.TestResultsHandler(sessions))

		pr.With(rbac.RequireAny("interview:view", "test:view")).
			Get("/sessions", api.ListSessionsHandler(sessions))

		pr.With(rbac.Require("interview:answer")).Group(func(ar chi.Router) {
			api.MountAudio(ar, sessions, bs)
		})

		pr.With(rbac.Require("chat:use")).Post("/chat", api.ChatHandler(assistant))
		pr.With(rbac.Require("profile:view")).Get("/profile", api.ProfileHandler(userStore, events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
