// Package ui serves the three dashboard screens and the JSON endpoints they
// poll. All computation happens per request; the only state behind the
// handlers is the session registry.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"amaa/domain/effect"
	"amaa/domain/plan"
	"amaa/internal"
	"amaa/internal/config"
	apperrors "amaa/internal/errors"
	"amaa/internal/session"
	"amaa/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router    *chi.Mux
	registry  *session.Registry
	reader    ports.TableReader
	sampler   *effect.Sampler
	simulator *plan.Simulator
	cfg       *config.Config
	templates *template.Template
	logger    *internal.Logger
}

// Deps are the collaborators the app is wired with.
type Deps struct {
	Registry  *session.Registry
	Reader    ports.TableReader
	Sampler   *effect.Sampler
	Simulator *plan.Simulator
	Config    *config.Config
	Logger    *internal.Logger
}

// NewApp creates the UI application
func NewApp(deps Deps) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"num": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to parse templates")
	}

	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	app := &App{
		router:    chi.NewRouter(),
		registry:  deps.Registry,
		reader:    deps.Reader,
		sampler:   deps.Sampler,
		simulator: deps.Simulator,
		cfg:       deps.Config,
		templates: templates,
		logger:    logger,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Screens
	a.router.Get("/", a.handleHistoryPage)
	a.router.Get("/simulation", a.handleSimulationPage)
	a.router.Get("/optimization", a.handleOptimizationPage)
	a.router.Get("/help", a.handleHelpPage)

	// Data API
	a.router.Post("/api/upload", a.handleUpload)
	a.router.Get("/api/columns", a.handleColumns)
	a.router.Get("/api/preview", a.handlePreview)
	a.router.Get("/api/effects", a.handleEffects)
	a.router.Get("/api/simulation/table", a.handleSimulationTable)
	a.router.Get("/api/optimization/table", a.handleOptimizationTable)
}

// Handler exposes the router for tests and embedding.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	a.logger.Info("[UI] serving marketing effect dashboard on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// renderTemplate writes an HTML page
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("[UI] template %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
