package views

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"
)

func errorPage(title, text string) templ.Component {
	return component(func(_ context.Context, buf *bytes.Buffer) error {
		panelHead(buf, title)
		fmt.Fprintf(buf, "<main class=\"login\">\n<h1>%s</h1>\n<p>%s</p>\n", esc(title), esc(text))
		buf.WriteString("<p><a href=\"/admin/\">Back to the control panel</a></p>\n</main>\n</body>\n</html>\n")
		return nil
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return errorPage("Not found", "The page or post you asked for does not exist.")
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return errorPage("Something went wrong", "The request failed. Details are in the server log.")
}
