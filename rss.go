package autoblog

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title    string `xml:"title"`
	Link     string `xml:"link"`
	Category string `xml:"category,omitempty"`
	PubDate  string `xml:"pubDate"`
	GUID     string `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, posts []BlogPost) error {
	base := a.Config.URL
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host + "/admin/"
	}
	posts = latestPerFile(posts)
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := time.ParseInLocation(dateLayout, p.CreatedDate, time.Local); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := a.pageLink(c, p)
		items = append(items, rssItem{
			Title:    p.Title,
			Link:     link,
			Category: p.Topic,
			PubDate:  pubDate,
			GUID:     link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: "Generated posts from " + a.Config.Name,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
