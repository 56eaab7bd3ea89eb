package autoblog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/eringen/autoblog/generate"
	"github.com/eringen/autoblog/views"
)

const (
	defaultTitle       = "Blog Post"
	metaDescriptionMax = 160
)

// Publisher renders generated content to static pages and records them.
type Publisher struct {
	OutputDir string
	SiteName  string
	SiteURL   string

	store *Store
	now   func() time.Time
}

// NewPublisher creates a Publisher writing into cfg.OutputDir.
func NewPublisher(cfg Config, store *Store) *Publisher {
	return &Publisher{
		OutputDir: cfg.OutputDir,
		SiteName:  cfg.Name,
		SiteURL:   cfg.URL,
		store:     store,
		now:       time.Now,
	}
}

// Publish writes content for topic as a page and inserts a new blogs row
// with downloaded=false. It returns the filename written. Nil content is a
// no-op that returns "".
func (p *Publisher) Publish(ctx context.Context, content *generate.Content, topic string) (string, error) {
	if content == nil {
		return "", nil
	}

	filename, err := p.resolveFilename(topic)
	if err != nil {
		return "", fmt.Errorf("resolve filename for %q: %w", topic, err)
	}

	now := p.now()
	title := content.Title
	if title == "" {
		title = defaultTitle
	}
	meta := content.MetaDescription
	if meta == "" {
		meta = metaFromBody(content.Body)
	}
	keywords := FilterEmpty(append([]string{content.PrimaryKeyword}, content.SecondaryKeywords...))

	page := views.Page{
		Title:           title,
		MetaDescription: meta,
		Keywords:        keywords,
		Body:            content.Body,
		Published:       now,
		SiteName:        p.SiteName,
		SiteURL:         p.SiteURL,
		Filename:        filename,
	}
	pageHTML, err := renderBytes(ctx, views.BlogPage(page))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", filename, err)
	}

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.OutputDir, filename), pageHTML, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}

	id, err := p.store.InsertPost(BlogPost{
		Title:       title,
		Topic:       topic,
		Filename:    filename,
		CreatedDate: now.Format(dateLayout),
	})
	if err != nil {
		return "", fmt.Errorf("record %s: %w", filename, err)
	}

	slog.Info("page published", "topic", topic, "filename", filename, "id", id)
	return filename, nil
}

// resolveFilename picks the file for topic. A topic keeps overwriting its
// own file; a different topic that sanitizes to a taken name gets "-2",
// "-3", ... until a free or self-owned name is found.
func (p *Publisher) resolveFilename(topic string) (string, error) {
	base := SanitizeFilename(topic)
	name := base
	for n := 2; ; n++ {
		owner, err := p.store.LatestTopicForFilename(name)
		if err != nil {
			return "", err
		}
		if owner == "" || owner == topic {
			return name, nil
		}
		name = suffixedFilename(base, n)
	}
}

// metaFromBody uses the first non-empty paragraph of the body, cut to the
// usual meta description length.
func metaFromBody(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	var text string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = strings.Join(strings.Fields(s.Text()), " ")
		return text == ""
	})
	if text == "" {
		text = strings.Join(strings.Fields(doc.Text()), " ")
	}
	runes := []rune(text)
	if len(runes) <= metaDescriptionMax {
		return text
	}
	return strings.TrimSpace(string(runes[:metaDescriptionMax-3])) + "..."
}
