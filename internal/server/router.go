package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/handlers"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	TokenVerifier    middleware.TokenVerifier
	UserProvisioner  middleware.UserProvisioner
	DB               Pinger
	QAHandler        *handlers.QAHandler
	LogsHandler      *handlers.LogsHandler
	DocumentsHandler *handlers.DocumentsHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	CoursesHandler   *handlers.CoursesHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.DB != nil {
			if err := cfg.DB.Ping(r.Context()); err != nil {
				api.Error(w, http.StatusServiceUnavailable, domain.ErrCodeInternalError, "database unreachable")
				return
			}
		}
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.TokenVerifier, cfg.UserProvisioner))

		r.Route("/api", func(r chi.Router) {
			r.Get("/courses", cfg.CoursesHandler.List)

			r.Post("/ask-question", cfg.QAHandler.AskQuestion)
			r.Post("/submit-correction", cfg.QAHandler.SubmitCorrection)

			r.Get("/chat-logs", cfg.LogsHandler.ListChatLogs)
			r.Get("/qa-logs", cfg.LogsHandler.ListQALogs)
			r.Post("/qa-logs/{id}/flag", cfg.LogsHandler.Flag)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", cfg.DocumentsHandler.Upload)
				r.Get("/", cfg.DocumentsHandler.List)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/summary", cfg.AnalyticsHandler.Summary)
				r.Get("/top-concepts", cfg.AnalyticsHandler.TopConcepts)
			})
		})
	})

	return r
}
