package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/timesheet-sync/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

// NewRouter builds the API. With a nil JWTService the operator routes
// (sync triggers and mapping writes) are not mounted.
func NewRouter(opts RouterOptions, JWTService jwt.Service, timesheetHandler TimesheetHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timesheet-sync"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sync/status", timesheetHandler.Status)
		r.Get("/sync/events", timesheetHandler.Events)

		r.Get("/calendar", timesheetHandler.Calendar)
		r.Get("/calendar/leaves.ics", timesheetHandler.LeavesICS)

		r.Get("/name-mappings", timesheetHandler.ListNameMappings)

		if JWTService == nil {
			slog.Warn("JWT secret not configured, operator routes are disabled")
			return
		}

		// Requires an operator token
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.OperatorRequired)

			r.Post("/sync", timesheetHandler.SyncAll)
			r.Post("/sync/{team}", timesheetHandler.SyncTeam)
			r.Post("/name-mappings", timesheetHandler.CreateNameMapping)
		})
	})
	return r
}
