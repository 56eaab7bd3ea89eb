package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// buildURL joins path segments onto a base URL. Unlike directory links,
// page links keep their file name, so no trailing slash is added.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// PageURL returns the public URL of a generated page, or "" without a base.
func PageURL(siteURL, filename string) string {
	if siteURL == "" {
		return ""
	}
	return buildURL(siteURL, filename)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a page.
func BlogPostingJsonLD(p Page) string {
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      p.Title,
		"description":   p.MetaDescription,
		"datePublished": p.Published.Format("2006-01-02"),
	}
	if p.SiteName != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  p.SiteName,
		}
	}
	if u := PageURL(p.SiteURL, p.Filename); u != "" {
		data["url"] = u
		data["mainEntityOfPage"] = map[string]string{
			"@type": "WebPage",
			"@id":   u,
		}
	}
	if len(p.Keywords) > 0 {
		data["keywords"] = strings.Join(p.Keywords, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func statusClass(status string) string {
	switch status {
	case "created":
		return "status ok"
	case "skipped":
		return "status muted"
	default:
		return "status err"
	}
}
