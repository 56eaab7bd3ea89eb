package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eringen/autoblog/internal/llmjson"
)

// Keywords is the reply to the keyword-research prompt.
type Keywords struct {
	Primary   string   `json:"primary_keyword"`
	Secondary []string `json:"secondary_keywords"`
}

// article is the reply to the article prompt.
type article struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Content         string `json:"content"`
}

// Content is a generated blog post, consumed once by the page renderer.
type Content struct {
	PrimaryKeyword    string
	SecondaryKeywords []string
	Title             string
	MetaDescription   string
	Body              string
}

// Generator produces Content for a topic with one provider and model.
type Generator struct {
	provider Provider
	model    string
}

// NewGenerator creates a Generator. An empty model uses the provider default.
func NewGenerator(p Provider, model string) *Generator {
	if model == "" {
		model = DefaultModel(p.Name())
	}
	return &Generator{provider: p, model: model}
}

// Model returns the model the generator calls.
func (g *Generator) Model() string { return g.model }

// Close releases the provider's client.
func (g *Generator) Close() error { return g.provider.Close() }

// Generate runs keyword research followed by article generation. Either call
// failing, or either reply failing to decode, aborts without retry.
func (g *Generator) Generate(ctx context.Context, topic string) (*Content, error) {
	slog.Info("generating content", "topic", topic, "provider", g.provider.Name(), "model", g.model)

	kw, err := g.ResearchKeywords(ctx, topic)
	if err != nil {
		return nil, err
	}

	reply, err := g.provider.Generate(ctx, g.model, ArticlePrompt(kw))
	if err != nil {
		return nil, fmt.Errorf("article generation for %q: %w", topic, err)
	}
	art, err := llmjson.DecodeAs[article](reply)
	if err != nil {
		return nil, fmt.Errorf("article generation for %q: %w", topic, err)
	}

	return &Content{
		PrimaryKeyword:    kw.Primary,
		SecondaryKeywords: kw.Secondary,
		Title:             art.Title,
		MetaDescription:   art.MetaDescription,
		Body:              art.Content,
	}, nil
}

// ResearchKeywords asks for a primary keyword and five secondary keywords.
// A reply without a primary keyword falls back to the topic itself.
func (g *Generator) ResearchKeywords(ctx context.Context, topic string) (Keywords, error) {
	reply, err := g.provider.Generate(ctx, g.model, KeywordPrompt(topic))
	if err != nil {
		return Keywords{}, fmt.Errorf("keyword research for %q: %w", topic, err)
	}
	kw, err := llmjson.DecodeAs[Keywords](reply)
	if err != nil {
		return Keywords{}, fmt.Errorf("keyword research for %q: %w", topic, err)
	}
	if strings.TrimSpace(kw.Primary) == "" {
		kw.Primary = topic
	}
	return kw, nil
}

// KeywordPrompt builds the keyword-research prompt for topic.
func KeywordPrompt(topic string) string {
	return fmt.Sprintf(`Perform keyword research for the topic: '%s'
Identify primary keyword and 5 related secondary keywords with good search volume and low competition.
Format as JSON with fields: primary_keyword, secondary_keywords`, topic)
}

// ArticlePrompt builds the article prompt from researched keywords.
func ArticlePrompt(kw Keywords) string {
	return fmt.Sprintf(`Write a comprehensive, SEO-optimized blog post about '%[1]s'.

Include these elements:
1. An engaging H1 title that includes the primary keyword: '%[1]s'
2. A meta description of 150-160 characters
3. An introduction that hooks the reader
4. At least 3 H2 subheadings
5. Relevant H3 subheadings where appropriate
6. 1000-1500 words of informative, high-quality content
7. Naturally incorporate these secondary keywords: %[2]s
8. A conclusion with a call to action
9. Optimize for readability with short paragraphs and bulleted lists where appropriate

Format the response as JSON with these fields:
- title (H1)
- meta_description
- content (full HTML formatted blog content)`, kw.Primary, strings.Join(kw.Secondary, ", "))
}
