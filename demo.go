package autoblog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/eringen/autoblog/generate"
	"github.com/eringen/autoblog/internal/metrics"
)

// DemoTopics are the fixed topics of the demo set.
var DemoTopics = []string{
	"Latest smartphone technology trends 2025",
	"Future of remote work post-pandemic",
	"Sustainable energy solutions worldwide",
	"Digital marketing strategies for startups",
	"Healthy nutrition tips for busy professionals",
}

// DemoContent returns the fixed payload rendered for every demo topic.
func DemoContent() *generate.Content {
	return &generate.Content{
		PrimaryKeyword:    "tech trends 2025",
		SecondaryKeywords: []string{"artificial intelligence", "quantum computing", "extended reality"},
		Title:             "Top 10 Tech Trends to Watch in 2025",
		MetaDescription:   "Discover the most important technology trends that will shape the future in 2025 and beyond. From AI to quantum computing, stay ahead of the curve.",
		Body:              demoBody,
	}
}

const demoBody = `<p>The technology landscape is evolving faster than ever before. As we move through 2025, several groundbreaking technologies are reshaping how we live and work. This article explores the most significant tech trends that you should keep an eye on this year.</p>

<h2>1. Artificial Intelligence Revolution</h2>
<p>Artificial Intelligence continues to advance at an unprecedented pace. In 2025, we're seeing AI systems that can perform complex reasoning tasks that were previously thought to require human intelligence.</p>
<p>Key developments include:</p>
<ul>
    <li>More sophisticated large language models that can understand and generate nuanced content</li>
    <li>AI systems that can explain their reasoning process</li>
    <li>Greater integration of AI into everyday applications and devices</li>
</ul>

<h2>2. Quantum Computing Goes Mainstream</h2>
<p>After years of research and development, quantum computing is finally beginning to solve real-world problems that classical computers cannot handle efficiently.</p>

<h2>3. Extended Reality (XR) Transforms Work and Entertainment</h2>
<p>The lines between physical and digital realities continue to blur as extended reality technologies mature.</p>

<h3>Virtual Workspaces</h3>
<p>Companies are increasingly adopting virtual workspaces that allow remote teams to collaborate as if they were in the same physical space.</p>

<h3>Immersive Entertainment</h3>
<p>Entertainment experiences are becoming more interactive and personalized through XR technologies.</p>

<h2>Conclusion</h2>
<p>The technological landscape of 2025 offers incredible opportunities for businesses and individuals who stay informed and adapt quickly. By understanding these key trends, you can position yourself to take advantage of the next wave of digital transformation.</p>

<p>Want to learn more about how these technologies can benefit your business? Contact our team of experts today for a personalized consultation.</p>`

// GenerateDemo publishes the demo set without any external calls. Every call
// inserts fresh rows and overwrites the same files. A topic that fails is
// reported and the rest are still published; the joined errors are returned.
func GenerateDemo(ctx context.Context, p *Publisher) (Report, error) {
	var report Report
	var errs []error
	for _, topic := range DemoTopics {
		filename, err := p.Publish(ctx, DemoContent(), topic)
		if err != nil {
			slog.Error("demo post failed", "topic", topic, "error", err)
			report.Results = append(report.Results, TopicResult{Topic: topic, Status: StatusFailed, Err: err})
			errs = append(errs, err)
			continue
		}
		report.Results = append(report.Results, TopicResult{Topic: topic, Status: StatusCreated, Filename: filename})
	}
	metrics.Global.AddDemoPosts(report.Count(StatusCreated))
	return report, errors.Join(errs...)
}
