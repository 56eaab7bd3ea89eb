package autoblog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/autoblog/internal/metrics"
	"github.com/eringen/autoblog/views"
)

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleHealth(c echo.Context) error {
	stats := metrics.Global.GetStats()
	if posts, err := a.Store.ListPosts(OnlyAvailable); err == nil {
		stats["posts_available"] = len(posts)
	}
	return c.JSON(http.StatusOK, stats)
}

// postFromParam loads the post named by the :id route parameter.
func (a *App) postFromParam(c echo.Context) (BlogPost, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return BlogPost{}, echo.ErrNotFound
	}
	post, err := a.Store.GetPost(id)
	if errors.Is(err, ErrNotFound) {
		return BlogPost{}, echo.ErrNotFound
	}
	return post, err
}

// handlePreview serves the generated page as is, for the dashboard iframe.
func (a *App) handlePreview(c echo.Context) error {
	post, err := a.postFromParam(c)
	if err != nil {
		return err
	}
	if !a.Archive.Exists(post.Filename) {
		return echo.ErrNotFound
	}
	return c.File(a.Archive.Path(post.Filename))
}

// handlePostDownload sends one page as an attachment. The downloaded flag is
// only set by the bundle download.
func (a *App) handlePostDownload(c echo.Context) error {
	post, err := a.postFromParam(c)
	if err != nil {
		return err
	}
	if !a.Archive.Exists(post.Filename) {
		return echo.ErrNotFound
	}
	return c.Attachment(a.Archive.Path(post.Filename), post.Filename)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListPosts(AllPosts)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPosts(AllPosts)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		slog.Error("server error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		metrics.Global.SetError(err.Error())
		_ = RenderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
