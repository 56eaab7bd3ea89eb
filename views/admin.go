package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// esc escapes text and attribute values for the hand-written components.
func esc(s string) string {
	return templ.EscapeString(s)
}

// component wraps a buffer-filling render function, in the same way as the
// Markdown component: build the whole fragment, then write it once.
func component(render func(ctx context.Context, buf *bytes.Buffer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := render(ctx, &buf); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func panelHead(buf *bytes.Buffer, title string) {
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	buf.WriteString("<meta name=\"robots\" content=\"noindex\">\n")
	fmt.Fprintf(buf, "<title>%s</title>\n", esc(title))
	buf.WriteString("<link rel=\"stylesheet\" href=\"/public/panel.css\">\n</head>\n<body>\n")
}

func csrfField(buf *bytes.Buffer, token string) {
	fmt.Fprintf(buf, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">", esc(token))
}

// postForm renders a single-button form posting to action.
func postForm(buf *bytes.Buffer, action, token, label, class string) {
	fmt.Fprintf(buf, "<form method=\"post\" action=\"%s\">", esc(action))
	csrfField(buf, token)
	if class != "" {
		fmt.Fprintf(buf, "<button type=\"submit\" class=\"%s\">%s</button></form>", class, esc(label))
		return
	}
	fmt.Fprintf(buf, "<button type=\"submit\">%s</button></form>", esc(label))
}

// AdminLogin renders the password gate.
func AdminLogin(siteName string, showError bool, csrfToken string) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		panelHead(buf, siteName+" - Sign in")
		buf.WriteString("<main class=\"login\">\n")
		fmt.Fprintf(buf, "<h1>%s</h1>\n", esc(siteName))
		buf.WriteString("<form method=\"post\" action=\"/admin/login/\">")
		csrfField(buf, csrfToken)
		buf.WriteString("<label for=\"password\">Enter password</label>")
		buf.WriteString("<input id=\"password\" type=\"password\" name=\"password\" autocomplete=\"current-password\" required autofocus>")
		buf.WriteString("<button type=\"submit\">Sign in</button></form>\n")
		if showError {
			buf.WriteString("<p class=\"error\" role=\"alert\">Incorrect password</p>\n")
		}
		buf.WriteString("</main>\n</body>\n</html>\n")
		return nil
	})
}

// AdminDashboard renders the control panel: sidebar with settings and the
// downloaded list, main column with actions, last report and available posts.
func AdminDashboard(d Dashboard) templ.Component {
	return component(func(ctx context.Context, buf *bytes.Buffer) error {
		panelHead(buf, d.SiteName)

		buf.WriteString("<aside class=\"sidebar\">\n")
		fmt.Fprintf(buf, "<h2>%s</h2>\n", esc(d.SiteName))
		if err := settingsPanel(d.Settings, d.CSRFToken).Render(ctx, buf); err != nil {
			return err
		}
		if err := downloadedList(d.Downloaded).Render(ctx, buf); err != nil {
			return err
		}
		postForm(buf, "/admin/logout/", d.CSRFToken, "Log out", "link")
		buf.WriteString("\n</aside>\n")

		buf.WriteString("<main class=\"content\">\n")
		fmt.Fprintf(buf, "<h1>%s</h1>\n", esc(d.SiteName))
		if d.Message != "" {
			fmt.Fprintf(buf, "<p class=\"message\" role=\"status\">%s</p>\n", esc(d.Message))
		}
		buf.WriteString("<div class=\"actions\">")
		postForm(buf, "/admin/generate/", d.CSRFToken, "Generate Blogs from Trending Topics", "")
		postForm(buf, "/admin/demo/", d.CSRFToken, "Generate Demo Blogs (No API needed)", "")
		buf.WriteString("</div>\n")

		if d.Report != nil {
			if err := runReport(*d.Report).Render(ctx, buf); err != nil {
				return err
			}
		}
		if err := availablePosts(d.Available, d.CSRFToken).Render(ctx, buf); err != nil {
			return err
		}
		buf.WriteString("</main>\n</body>\n</html>\n")
		return nil
	})
}

func keyPlaceholder(set bool) string {
	if set {
		return "saved, leave blank to keep"
	}
	return "not set"
}

func option(buf *bytes.Buffer, value string, selected bool) {
	sel := ""
	if selected {
		sel = " selected"
	}
	fmt.Fprintf(buf, "<option value=\"%s\"%s>%s</option>", esc(value), sel, esc(value))
}

func settingsPanel(s Settings, token string) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		buf.WriteString("<section class=\"settings\"><h3>API Configuration</h3>\n")
		buf.WriteString("<form method=\"post\" action=\"/admin/settings/\">")
		csrfField(buf, token)

		if s.TrendSource == "newsapi" || s.TrendSource == "" {
			fmt.Fprintf(buf, "<label for=\"news_key\">NewsAPI Key</label><input id=\"news_key\" type=\"password\" name=\"news_key\" placeholder=\"%s\" autocomplete=\"off\">", keyPlaceholder(s.HasNewsKey))
		}
		fmt.Fprintf(buf, "<label for=\"llm_key\">Model API Key</label><input id=\"llm_key\" type=\"password\" name=\"llm_key\" placeholder=\"%s\" autocomplete=\"off\">", keyPlaceholder(s.HasLLMKey))

		buf.WriteString("<label for=\"provider\">Provider</label><select id=\"provider\" name=\"provider\">")
		for _, p := range s.Providers {
			option(buf, p, p == s.Provider)
		}
		buf.WriteString("</select>")

		if len(s.Models) > 0 {
			buf.WriteString("<label for=\"model\">Select Model</label><select id=\"model\" name=\"model\">")
			for _, m := range s.Models {
				option(buf, m, m == s.Model)
			}
			buf.WriteString("</select>")
		} else {
			fmt.Fprintf(buf, "<label for=\"model\">Model Name</label><input id=\"model\" type=\"text\" name=\"model\" value=\"%s\">", esc(s.Model))
		}
		buf.WriteString("<button type=\"submit\">Save</button></form>\n")

		if s.HasLLMKey {
			postForm(buf, "/admin/models/", token, "List Available Models", "secondary")
			buf.WriteString("\n")
		}
		buf.WriteString("</section>\n")
		return nil
	})
}

func downloadedList(posts []Post) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		buf.WriteString("<section class=\"downloaded\"><h3>Downloaded Blogs</h3>\n")
		if len(posts) == 0 {
			buf.WriteString("<p>No downloaded blogs yet.</p></section>\n")
			return nil
		}
		fmt.Fprintf(buf, "<p>Total downloaded blogs: %d</p>\n<ul>", len(posts))
		for _, p := range posts {
			fmt.Fprintf(buf, "<li><strong>%s</strong> - <em>%s</em></li>", esc(p.Title), esc(p.CreatedDate))
		}
		buf.WriteString("</ul></section>\n")
		return nil
	})
}

func runReport(r Report) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		buf.WriteString("<section class=\"report\"><h2>Last run</h2>\n")
		if r.FetchError != "" {
			fmt.Fprintf(buf, "<p class=\"error\">Error fetching trends: %s</p>\n", esc(r.FetchError))
		}
		if len(r.Results) == 0 {
			buf.WriteString("<p>No trending topics found.</p>\n")
		} else {
			buf.WriteString("<ol>")
			for _, res := range r.Results {
				fmt.Fprintf(buf, "<li><span class=\"%s\">%s</span> %s", statusClass(res.Status), esc(res.Status), esc(res.Topic))
				if res.Filename != "" {
					fmt.Fprintf(buf, " &rarr; <code>%s</code>", esc(res.Filename))
				}
				if res.Error != "" {
					fmt.Fprintf(buf, " <small class=\"error\">%s</small>", esc(res.Error))
				}
				buf.WriteString("</li>")
			}
			buf.WriteString("</ol>\n")
		}
		if r.RunID != "" {
			fmt.Fprintf(buf, "<p class=\"muted\">run %s</p>\n", esc(r.RunID))
		}
		buf.WriteString("</section>\n")
		return nil
	})
}

func availablePosts(posts []Post, token string) templ.Component {
	return component(func(ctx context.Context, buf *bytes.Buffer) error {
		buf.WriteString("<section class=\"available\"><h2>Available Blogs</h2>\n")
		if len(posts) == 0 {
			buf.WriteString("<p>No blogs available for download. Generate some blogs first!</p></section>\n")
			return nil
		}

		buf.WriteString("<form id=\"bundle\" method=\"post\" action=\"/admin/download/\">")
		csrfField(buf, token)
		buf.WriteString("<fieldset><legend>Select blogs to download</legend>")
		for _, p := range posts {
			fmt.Fprintf(buf, "<label><input type=\"checkbox\" name=\"ids\" value=\"%d\"> %s (%s)</label>", p.ID, esc(p.Title), esc(p.Filename))
		}
		buf.WriteString("</fieldset><button type=\"submit\">Download Selected Blogs as ZIP</button></form>\n")

		for _, p := range posts {
			if err := postDetails(p).Render(ctx, buf); err != nil {
				return err
			}
		}
		buf.WriteString("</section>\n")
		return nil
	})
}

func postDetails(p Post) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		id := strconv.FormatInt(p.ID, 10)
		fmt.Fprintf(buf, "<details><summary>%s - %s</summary>", esc(p.Title), esc(p.CreatedDate))
		fmt.Fprintf(buf, "<p><strong>Topic:</strong> %s</p>", esc(p.Topic))
		fmt.Fprintf(buf, "<p><strong>Filename:</strong> %s</p>", esc(p.Filename))
		if p.FileExists {
			fmt.Fprintf(buf, "<p><a href=\"/admin/post/%s/download/\">Download HTML</a></p>", id)
			fmt.Fprintf(buf, "<iframe src=\"/admin/preview/%s/\" title=\"%s\" loading=\"lazy\" sandbox height=\"300\"></iframe>", id, esc(p.Title))
		} else {
			buf.WriteString("<p class=\"error\">File missing on disk.</p>")
		}
		buf.WriteString("</details>\n")
		return nil
	})
}
