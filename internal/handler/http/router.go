package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig holds the HTTP settings that do not belong to a handler.
type RouterConfig struct {
	AllowedOrigins []string
	// FilesDir is served under /files when set, backing local download URLs
	FilesDir string
}

func NewRouter(cfg RouterConfig, logger *slog.Logger, reportHandler ReportHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Last-Event-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Download-URL"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files", http.FileServer(http.Dir(cfg.FilesDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.List)
			r.Post("/", reportHandler.Create)
			r.Post("/validate/{kind}", reportHandler.Validate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", reportHandler.Get)
				r.Post("/upload", reportHandler.Upload)
				r.Post("/process", reportHandler.Process)
				r.Get("/download", reportHandler.Download)
				r.Get("/logs", reportHandler.Logs)
				r.Get("/events", reportHandler.Events)
			})
		})
	})
	return r
}

// NewLogger builds the JSON request logger used by the router.
func NewLogger(app, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("env", env),
	)
}
