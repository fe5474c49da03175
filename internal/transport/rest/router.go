package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/auth"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/debtlimit"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/payment"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport/middleware"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport/swagger"
)

// Routes carries everything RegisterAllRoutes mounts. Nil handlers are
// skipped.
type Routes struct {
	Config    *internal.Config
	Health    *HealthHandler
	Sessions  auth.SessionProvider
	RBAC      *auth.RBACAuthorization
	Access    *auth.Handler
	DebtLimit *debtlimit.Handler
	Payment   *payment.Handler
	Metrics   http.Handler
	Docs      *swagger.Docs
	Logger    *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, routes Routes) {
	cfg := routes.Config
	logger := routes.Logger

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(auth.SessionMiddleware(routes.Sessions, logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if routes.Docs != nil {
		router.Get("/openapi.yml", routes.Docs.ServeYAML)
		router.Get("/openapi.json", routes.Docs.ServeJSON)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if routes.Health != nil {
			r.Get("/health", routes.Health.healthCheckHandler)
			r.Get("/ping", routes.Health.pingHandler)
		}
		if routes.Metrics != nil && cfg.Observability.Metrics.Enabled {
			r.Handle(cfg.Observability.Metrics.Path, routes.Metrics)
		}

		// decision endpoints are rate limited, probes and scrapes are not
		r.Group(func(r chi.Router) {
			if cfg.RateLimit.Enabled {
				r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
			}

			if routes.Access != nil {
				r.Get("/session", routes.Access.Session)
				r.Get("/access/redirect", routes.Access.Redirect)
				r.Post("/access/permission", routes.Access.CheckPermission)
				r.Post("/access/route", routes.Access.CheckRoute)
			}

			r.Group(func(pr chi.Router) {
				pr.Use(routes.RBAC.RequireAuthenticated())

				if routes.DebtLimit != nil {
					pr.Post("/guardrails/debt-limit", routes.DebtLimit.CheckLimit)
				}
				if routes.Payment != nil {
					pr.Post("/guardrails/payment", routes.Payment.CheckPayment)
				}

				pr.Route("/agents/{id}", func(ar chi.Router) {
					if routes.DebtLimit != nil {
						ar.With(routes.RBAC.RequirePermission(access.PermissionViewReports, access.PermissionDebtCollection)).
							Get("/debt-limit", routes.DebtLimit.AgentLimit)
						// exports back the export receipt page and follow its policy
						ar.Group(func(er chi.Router) {
							er.Use(routes.RBAC.RequireRoute("/export-receipts"))
							er.Post("/exports/validate", routes.DebtLimit.ValidateExport)
							er.Post("/exports", routes.DebtLimit.RecordExport)
						})
					}
					if routes.Payment != nil {
						ar.Group(func(dr chi.Router) {
							dr.Use(routes.RBAC.RequirePermission(access.PermissionDebtCollection))
							dr.Post("/payments/validate", routes.Payment.ValidateAgentPayment)
							dr.Post("/payments", routes.Payment.RecordPayment)
						})
					}
				})

				if routes.DebtLimit != nil {
					pr.Route("/agent-types/{id}/maximum-debt", func(sr chi.Router) {
						sr.Use(routes.RBAC.RequirePermission(access.PermissionSystemSettings))
						sr.Post("/validate", routes.DebtLimit.ReviewCeiling)
						sr.Put("/", routes.DebtLimit.ChangeCeiling)
					})
				}
			})
		})
	})
}
