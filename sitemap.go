package autoblog

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/autoblog/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// pageLink is where a generated page will live once published: under
// Config.URL when set, otherwise its preview route on this server.
func (a *App) pageLink(c echo.Context, p BlogPost) string {
	if u := views.PageURL(a.Config.URL, p.Filename); u != "" {
		return u
	}
	return c.Scheme() + "://" + c.Request().Host + "/admin/preview/" + strconv.FormatInt(p.ID, 10) + "/"
}

// latestPerFile keeps the newest row of each filename, since reruns add rows
// for a file that exists once.
func latestPerFile(posts []BlogPost) []BlogPost {
	seen := make(map[string]bool)
	var out []BlogPost
	for _, p := range posts {
		if seen[p.Filename] {
			continue
		}
		seen[p.Filename] = true
		out = append(out, p)
	}
	return out
}

func (a *App) renderSitemap(c echo.Context, posts []BlogPost) error {
	var urls []sitemapURL
	for _, p := range latestPerFile(posts) {
		lastMod := ""
		if t, err := time.ParseInLocation(dateLayout, p.CreatedDate, time.Local); err == nil {
			lastMod = t.Format("2006-01-02")
		}
		urls = append(urls, sitemapURL{
			Loc:     a.pageLink(c, p),
			LastMod: lastMod,
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
