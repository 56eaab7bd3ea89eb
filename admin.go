package autoblog

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/autoblog/generate"
	"github.com/eringen/autoblog/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, views.AdminLogin(a.Config.Name, false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"), nil)
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	slog.Warn("failed login", "ip", ip)
	return Render(c, views.AdminLogin(a.Config.Name, true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleSettings stores API keys, provider and model in the session. Blank
// key fields keep the saved key.
func (a *App) handleSettings(c echo.Context) error {
	rc := a.sessionRunConfig(c)
	if v := strings.TrimSpace(c.FormValue("news_key")); v != "" {
		rc.NewsAPIKey = v
	}
	if v := strings.TrimSpace(c.FormValue("llm_key")); v != "" {
		rc.LLMAPIKey = v
	}
	switched := false
	if v := strings.TrimSpace(c.FormValue("provider")); v != "" {
		provider := generate.NormalizeProvider(v)
		if !slices.Contains(generate.SupportedProviders(), provider) {
			return redirectWithMessage(c, fmt.Sprintf("Unknown provider %q.", v))
		}
		switched = provider != rc.Provider
		rc.Provider = provider
	}
	// A model picked for the previous provider does not carry over.
	if switched {
		rc.Model = ""
	} else if v, ok := formValue(c, "model"); ok {
		rc.Model = strings.TrimSpace(v)
	}
	if err := saveRunConfig(c, rc); err != nil {
		return err
	}
	return redirectWithMessage(c, "Settings saved.")
}

// handleModels lists the provider's models and selects the first one when
// the saved model is not among them.
func (a *App) handleModels(c echo.Context) error {
	rc := a.sessionRunConfig(c)
	if rc.LLMAPIKey == "" {
		return redirectWithMessage(c, "Enter a model API key first.")
	}
	models, err := a.Models.Models(c.Request().Context(), rc.Provider, rc.LLMAPIKey)
	if err != nil {
		slog.Error("list models failed", "provider", rc.Provider, "error", err)
		return redirectWithMessage(c, "No models found or API key invalid.")
	}
	if len(models) == 0 {
		return redirectWithMessage(c, "No models found or API key invalid.")
	}
	if !slices.Contains(models, rc.Model) {
		rc.Model = models[0]
		if err := saveRunConfig(c, rc); err != nil {
			return err
		}
	}
	return redirectWithMessage(c, fmt.Sprintf("Found %d available models.", len(models)))
}

func (a *App) handleGenerate(c echo.Context) error {
	rc := a.sessionRunConfig(c)
	if err := rc.Validate(a.Config.TrendSource); err != nil {
		return a.renderAdminDashboard(c, "Please enter both API keys in the sidebar.", nil)
	}

	ctx := c.Request().Context()
	src, err := a.newSource(a.Config, rc)
	if err != nil {
		return a.renderAdminDashboard(c, "Error configuring trend source: "+err.Error(), nil)
	}
	gen, err := a.newGenerator(ctx, rc)
	if err != nil {
		return a.renderAdminDashboard(c, "Error configuring model API: "+err.Error(), nil)
	}
	if closer, ok := gen.(io.Closer); ok {
		defer closer.Close()
	}

	report, err := a.Pipeline.Run(ctx, src, gen, func(done, total int, res TopicResult) {
		slog.Info("panel run progress", "done", done, "total", total, "topic", res.Topic, "status", res.Status)
	})
	var perr *ProcessedError
	if errors.As(err, &perr) && perr.Op == "load" {
		return a.renderAdminDashboard(c, "Error loading processed trends: "+perr.Err.Error(), nil)
	}
	if errors.As(err, &perr) {
		return a.renderAdminDashboard(c, "Error saving processed trends: "+perr.Err.Error(), &report)
	}
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Generated %d new blogs.", report.Count(StatusCreated))
	if len(report.Results) == 0 {
		msg = "No trending topics found."
	}
	return a.renderAdminDashboard(c, msg, &report)
}

func (a *App) handleDemo(c echo.Context) error {
	report, err := GenerateDemo(c.Request().Context(), a.Publisher)
	if err != nil {
		return a.renderAdminDashboard(c, "Error creating demo blogs: "+err.Error(), &report)
	}
	return a.renderAdminDashboard(c, "Demo blogs created successfully!", &report)
}

// handleBundle zips the selected posts and marks them downloaded.
func (a *App) handleBundle(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	var ids []int64
	for _, raw := range form["ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return redirectWithMessage(c, "Select at least one blog to download.")
	}

	buf, _, err := a.Archive.Download(ids)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="blogs.zip"`)
	return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
}

func (a *App) renderAdminDashboard(c echo.Context, msg string, report *Report) error {
	available, err := a.Archive.List(OnlyAvailable)
	if err != nil {
		return err
	}
	downloaded, err := a.Archive.List(OnlyDownloaded)
	if err != nil {
		return err
	}

	rc := a.sessionRunConfig(c)
	settings := views.Settings{
		HasNewsKey:  rc.NewsAPIKey != "",
		HasLLMKey:   rc.LLMAPIKey != "",
		Provider:    rc.Provider,
		Model:       rc.Model,
		Providers:   generate.SupportedProviders(),
		TrendSource: a.Config.TrendSource,
	}
	if settings.Model == "" {
		settings.Model = generate.DefaultModel(rc.Provider)
	}
	if rc.LLMAPIKey != "" {
		settings.Models, _ = a.Models.Cached(rc.Provider, rc.LLMAPIKey)
	}

	return Render(c, views.AdminDashboard(views.Dashboard{
		SiteName:   a.Config.Name,
		Available:  a.viewPosts(available),
		Downloaded: a.viewPosts(downloaded),
		Settings:   settings,
		Report:     viewReport(report),
		Message:    msg,
		CSRFToken:  CsrfToken(c),
	}))
}

func (a *App) viewPosts(posts []BlogPost) []views.Post {
	out := make([]views.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, views.Post{
			ID:          p.ID,
			Title:       p.Title,
			Topic:       p.Topic,
			Filename:    p.Filename,
			CreatedDate: p.CreatedDate,
			Downloaded:  p.Downloaded,
			FileExists:  a.Archive.Exists(p.Filename),
		})
	}
	return out
}

func viewReport(r *Report) *views.Report {
	if r == nil {
		return nil
	}
	vr := &views.Report{RunID: r.RunID}
	if r.FetchErr != nil {
		vr.FetchError = r.FetchErr.Error()
	}
	for _, res := range r.Results {
		tr := views.TopicResult{
			Topic:    res.Topic,
			Status:   string(res.Status),
			Filename: res.Filename,
		}
		if res.Err != nil {
			tr.Error = res.Err.Error()
		}
		vr.Results = append(vr.Results, tr)
	}
	return vr
}

func redirectWithMessage(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

// formValue reports whether key was submitted at all, so an emptied field
// can be told apart from a missing one.
func formValue(c echo.Context, key string) (string, bool) {
	form, err := c.FormParams()
	if err != nil {
		return "", false
	}
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
