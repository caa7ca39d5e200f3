package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/socialpay/socialpay-api/internal/domain/admin"
	"github.com/socialpay/socialpay-api/internal/domain/auth"
	"github.com/socialpay/socialpay-api/internal/domain/payment"
	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/task"
	"github.com/socialpay/socialpay-api/internal/domain/transfer"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/domain/withdrawal"
	"github.com/socialpay/socialpay-api/internal/middleware"
	"github.com/socialpay/socialpay-api/internal/pkg/jwt"
	"github.com/socialpay/socialpay-api/internal/pkg/metrics"
	"github.com/socialpay/socialpay-api/internal/pkg/response"
)

type handlers struct {
	auth       *auth.Handler
	user       *user.Handler
	wallet     *wallet.Handler
	referral   *referral.Handler
	payment    *payment.Handler
	task       *task.Handler
	transfer   *transfer.Handler
	withdrawal *withdrawal.Handler
	admin      *admin.Handler
}

type routerOptions struct {
	jwt            *jwt.Service
	limiter        *middleware.RateLimiter
	allowedOrigins []string
	// evidenceDir is served under /evidence when evidence is kept on local disk.
	evidenceDir string
}

func newRouter(h handlers, opts routerOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(opts.allowedOrigins))
	r.Use(metrics.InstrumentHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	if opts.evidenceDir != "" {
		r.Handle("/evidence/*", http.StripPrefix("/evidence/", http.FileServer(http.Dir(opts.evidenceDir))))
	}

	authMiddleware := middleware.Auth(opts.jwt)
	limit := opts.limiter.Handler

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", h.auth.Routes())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/profile", h.user.Profile)
			r.Get("/wallet", h.wallet.Get)
			r.Get("/referrals", h.referral.List)
			r.Mount("/payment-details", h.payment.Routes())
			r.With(limit).Post("/pin", h.transfer.CreatePin)
			r.Mount("/transfers", h.transfer.Routes(limit))
			r.Mount("/tasks", h.task.Routes())
			r.Mount("/withdrawals", h.withdrawal.WithdrawalRoutes(limit))
			r.Mount("/exchanges", h.withdrawal.ExchangeRoutes(limit))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())

			r.Get("/statistics", h.admin.Statistics)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.user.List)
				r.Post("/{id}/manage", h.admin.ManageUser)
				r.Post("/{id}/pin/reset", h.transfer.ResetPin)
			})
			r.Mount("/tasks", h.task.AdminTaskRoutes())
			r.Mount("/submissions", h.task.AdminSubmissionRoutes())
			r.Mount("/withdrawals", h.withdrawal.AdminWithdrawalRoutes())
			r.Mount("/exchanges", h.withdrawal.AdminExchangeRoutes())
			r.Mount("/transfers", h.transfer.AdminRoutes())
		})
	})

	return r
}
