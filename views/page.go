package views

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// pageStyle is the fixed stylesheet every generated page carries.
const pageStyle = `body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1 { color: #333; }
        h2 { color: #444; margin-top: 30px; }
        h3 { color: #555; }
        p { margin-bottom: 15px; }
        .date { color: #888; margin-bottom: 20px; }`

// BlogPage renders a complete, self-contained HTML document for a generated
// post. The body is written verbatim; every other field is escaped.
func BlogPage(p Page) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		title := p.Title
		if title == "" {
			title = "Blog Post"
		}

		buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		buf.WriteString("    <meta charset=\"UTF-8\">\n")
		buf.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
		fmt.Fprintf(buf, "    <meta name=\"description\" content=\"%s\">\n", esc(p.MetaDescription))
		if len(p.Keywords) > 0 {
			fmt.Fprintf(buf, "    <meta name=\"keywords\" content=\"%s\">\n", esc(strings.Join(p.Keywords, ", ")))
		}
		if u := PageURL(p.SiteURL, p.Filename); u != "" {
			fmt.Fprintf(buf, "    <link rel=\"canonical\" href=\"%s\">\n", esc(u))
		}
		fmt.Fprintf(buf, "    <title>%s</title>\n", esc(title))
		fmt.Fprintf(buf, "    <style>\n        %s\n    </style>\n", pageStyle)
		fmt.Fprintf(buf, "    <script type=\"application/ld+json\">%s</script>\n", BlogPostingJsonLD(p))
		buf.WriteString("</head>\n<body>\n")
		fmt.Fprintf(buf, "    <h1>%s</h1>\n", esc(title))
		fmt.Fprintf(buf, "    <div class=\"date\">Published on %s</div>\n", p.Published.Format("January 02, 2006"))
		buf.WriteString("    ")
		buf.WriteString(p.Body)
		buf.WriteString("\n    <hr>\n    <footer>\n")
		fmt.Fprintf(buf, "        <p>&copy; %d %s. All rights reserved.</p>\n", p.Published.Year(), esc(p.SiteName))
		buf.WriteString("    </footer>\n</body>\n</html>\n")
		return nil
	})
}
