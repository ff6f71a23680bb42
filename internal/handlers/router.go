package handlers

import (
	"log/slog"
	"net/http"

	"github.com/castqueue/castqueue/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	Auth     *AuthHandler
	Casts    *CastHandler
	Cron     *CronHandler
	Users    *UserHandler
	Payments *PaymentHandler
	Webhook  *WebhookHandler

	Sessions   *services.SessionService
	CronSecret string
	Logger     *slog.Logger
}

func NewRouter(deps RouterDeps) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/create-signer", deps.Auth.CreateSigner)
			r.Get("/signer-status", deps.Auth.SignerStatus)
			r.Post("/get-fid", deps.Auth.GetFid)
			r.Post("/session", deps.Auth.CreateSession)
		})

		r.Route("/casts", func(r chi.Router) {
			r.Use(RequireSession(deps.Sessions, deps.Logger))
			r.Post("/schedule", deps.Casts.Schedule)
			r.Post("/cancel", deps.Casts.Cancel)
			r.Get("/list", deps.Casts.List)
		})

		r.With(RequireCronSecret(deps.CronSecret, deps.Logger)).
			Get("/cron/send-casts", deps.Cron.SendCasts)

		r.Get("/users/{fid}", deps.Users.GetUser)
		r.Post("/payments/record", deps.Payments.Record)
		r.Post("/webhook", deps.Webhook.Handle)
	})

	return router
}
