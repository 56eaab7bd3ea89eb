// Package autoblog generates SEO blog pages from trending headlines with a
// generative-language API and serves a password-gated control panel for
// previewing, bundling and archiving them.
//
// A run fetches topics from a trends.Source, skips topics already recorded
// in the processed set, asks a generate.Generator for keywords and an
// article, renders the article to a static HTML page and records it in a
// SQLite table. The control panel is an Echo application; per-operator API
// keys and model choice live in an encrypted session cookie and are passed
// into each run as a RunConfig.
package autoblog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central autoblog application. It wires together the store,
// publisher, pipeline, archive, handlers and middleware.
type App struct {
	Config    Config
	Echo      *echo.Echo
	Store     *Store
	Publisher *Publisher
	Pipeline  *Pipeline
	Archive   *Archive
	Models    *ModelCache

	loginLimiter *LoginLimiter
	newSource    SourceFactory
	newGenerator GeneratorFactory
	listModels   ModelLister
}

// New creates a new App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:       cfg,
		Echo:         echo.New(),
		newSource:    DefaultSourceFactory,
		newGenerator: DefaultGeneratorFactory,
		listModels:   DefaultModelLister,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open initializes the store and the components built on it. It is enough
// for command line runs that do not serve the control panel.
func (a *App) Open() error {
	if a.Store != nil {
		return nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("autoblog: init store: %w", err)
	}
	a.Store = store
	a.Publisher = NewPublisher(a.Config, store)
	a.Pipeline = NewPipeline(a.Config, a.Publisher)
	a.Archive = NewArchive(a.Config, store)
	return nil
}

// Setup opens the store and registers middleware and routes without
// starting the server.
func (a *App) Setup() error {
	if a.Config.AdminPassword == "" {
		return errors.New("autoblog: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("autoblog: SessionSecret is required")
	}
	if err := a.Open(); err != nil {
		return err
	}

	a.Models = NewModelCache(a.listModels, a.Config.ModelCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start sets up the app and serves the control panel until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	slog.Info("control panel listening", "addr", a.Config.Addr, "output_dir", a.Config.OutputDir)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/panel.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.GET("/", handleRootRedirect)
	e.GET("/healthz", a.handleHealth)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	auth := a.requireAdmin
	e.POST("/admin/settings/", a.handleSettings, auth)
	e.POST("/admin/models/", a.handleModels, auth)
	e.POST("/admin/generate/", a.handleGenerate, auth)
	e.POST("/admin/demo/", a.handleDemo, auth)
	e.GET("/admin/preview/:id/", a.handlePreview, auth)
	e.GET("/admin/post/:id/download/", a.handlePostDownload, auth)
	e.POST("/admin/download/", a.handleBundle, auth)
	e.GET("/admin/sitemap.xml", a.handleSitemap, auth)
	e.GET("/admin/feed.xml", a.handleFeed, auth)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
