package autoblog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/autoblog/generate"
	"github.com/eringen/autoblog/internal/metrics"
	"github.com/eringen/autoblog/trends"
)

// ErrMissingKeys is returned when a run is started without the credentials
// its trend source and provider need.
var ErrMissingKeys = errors.New("missing API keys")

// ProcessedError reports that the processed-topic record could not be read
// (Op "load") or written (Op "save").
type ProcessedError struct {
	Op  string
	Err error
}

func (e *ProcessedError) Error() string { return e.Err.Error() }

func (e *ProcessedError) Unwrap() error { return e.Err }

// RunConfig is the operator's per-session configuration for a run.
type RunConfig struct {
	NewsAPIKey string
	LLMAPIKey  string
	Provider   string
	Model      string
}

// RunConfigFromEnv builds a RunConfig from the environment, for runs started
// outside the control panel. The provider's own key variable is used when
// LLM_API_KEY is unset.
func RunConfigFromEnv(cfg Config) RunConfig {
	rc := RunConfig{
		NewsAPIKey: os.Getenv("NEWSAPI_KEY"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		Provider:   generate.NormalizeProvider(cfg.Provider),
		Model:      cfg.Model,
	}
	if rc.LLMAPIKey == "" {
		switch rc.Provider {
		case generate.ProviderOpenAI:
			rc.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
		case generate.ProviderAnthropic:
			rc.LLMAPIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			rc.LLMAPIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	return rc
}

// Validate checks that the keys needed for trendSource are present.
func (rc RunConfig) Validate(trendSource string) error {
	if rc.LLMAPIKey == "" {
		return fmt.Errorf("%w: model API key is required", ErrMissingKeys)
	}
	if trendSource == SourceNewsAPI && rc.NewsAPIKey == "" {
		return fmt.Errorf("%w: NewsAPI key is required", ErrMissingKeys)
	}
	return nil
}

// ContentGenerator produces content for one topic.
type ContentGenerator interface {
	Generate(ctx context.Context, topic string) (*generate.Content, error)
}

// SourceFactory builds the trend source for a run.
type SourceFactory func(cfg Config, rc RunConfig) (trends.Source, error)

// GeneratorFactory builds the content generator for a run.
type GeneratorFactory func(ctx context.Context, rc RunConfig) (ContentGenerator, error)

// DefaultSourceFactory returns the NewsAPI or feed source named by
// cfg.TrendSource.
func DefaultSourceFactory(cfg Config, rc RunConfig) (trends.Source, error) {
	switch cfg.TrendSource {
	case SourceFeed:
		if cfg.FeedURL == "" {
			return nil, errors.New("feed trend source needs feed_url")
		}
		return trends.NewFeed(cfg.FeedURL, cfg.RequestTimeout), nil
	case SourceNewsAPI, "":
		src := trends.NewNewsAPI(rc.NewsAPIKey, cfg.NewsCountry, cfg.RequestTimeout)
		if cfg.NewsBaseURL != "" {
			src.BaseURL = cfg.NewsBaseURL
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown trend source %q", cfg.TrendSource)
	}
}

// DefaultGeneratorFactory connects to the configured provider.
func DefaultGeneratorFactory(ctx context.Context, rc RunConfig) (ContentGenerator, error) {
	p, err := generate.NewProvider(ctx, rc.Provider, rc.LLMAPIKey)
	if err != nil {
		return nil, err
	}
	return generate.NewGenerator(p, rc.Model), nil
}

// TopicStatus is the outcome of one topic in a run.
type TopicStatus string

const (
	StatusCreated TopicStatus = "created"
	StatusSkipped TopicStatus = "skipped"
	StatusFailed  TopicStatus = "failed"
)

// TopicResult is the outcome for a single topic.
type TopicResult struct {
	Topic    string
	Status   TopicStatus
	Filename string
	Err      error
}

// Report summarizes a pipeline run.
type Report struct {
	RunID    string
	FetchErr error
	Results  []TopicResult
	Duration time.Duration
}

// Count returns how many topics ended with status.
func (r Report) Count(status TopicStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// ProgressFunc is called after each topic with the fraction of topics done.
type ProgressFunc func(done, total int, res TopicResult)

// Pipeline turns trending topics into published pages, skipping topics
// already recorded in the processed set.
type Pipeline struct {
	publisher     *Publisher
	processedPath string
	retention     time.Duration
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewPipeline creates a Pipeline publishing through p.
func NewPipeline(cfg Config, p *Publisher) *Pipeline {
	return &Pipeline{
		publisher:     p,
		processedPath: cfg.ProcessedPath,
		retention:     cfg.ProcessedRetention,
		metrics:       metrics.Global,
		now:           time.Now,
	}
}

// Run fetches topics from source and processes them one at a time. A fetch
// failure is reported and treated as zero topics; a generation or publish
// failure fails that topic only. The returned error is non-nil only when the
// processed record cannot be read or written, and is then a *ProcessedError.
func (pl *Pipeline) Run(ctx context.Context, source trends.Source, gen ContentGenerator, progress ProgressFunc) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := slog.With("run_id", report.RunID)

	processed, err := LoadProcessedTrends(pl.processedPath, pl.retention)
	if err != nil {
		log.Error("load processed trends failed", "path", pl.processedPath, "error", err)
		pl.metrics.SetError(err.Error())
		return report, &ProcessedError{Op: "load", Err: err}
	}

	topics, err := source.Topics(ctx)
	if err != nil {
		log.Error("fetch trends failed", "source", source.Name(), "error", err)
		pl.metrics.SetError(err.Error())
		report.FetchErr = err
		topics = nil
	}
	pl.metrics.AddTopicsFetched(len(topics))
	log.Info("run started", "source", source.Name(), "topics", len(topics), "processed", processed.Len())

	for i, topic := range topics {
		res := pl.processTopic(ctx, processed, gen, topic)
		switch res.Status {
		case StatusCreated:
			pl.metrics.IncrementCreated()
			log.Info("topic created", "topic", topic, "filename", res.Filename)
		case StatusSkipped:
			pl.metrics.IncrementSkipped()
			log.Info("topic skipped", "topic", topic)
		case StatusFailed:
			pl.metrics.IncrementFailed()
			pl.metrics.SetError(res.Err.Error())
			log.Error("topic failed", "topic", topic, "error", res.Err)
		}
		report.Results = append(report.Results, res)
		if progress != nil {
			progress(i+1, len(topics), res)
		}
	}

	if err := processed.Save(); err != nil {
		log.Error("save processed trends failed", "path", pl.processedPath, "error", err)
		pl.metrics.SetError(err.Error())
		return report, &ProcessedError{Op: "save", Err: err}
	}

	report.Duration = time.Since(start)
	pl.metrics.RecordRun(report.Duration)
	log.Info("run finished",
		"created", report.Count(StatusCreated),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		"duration", report.Duration)
	return report, nil
}

func (pl *Pipeline) processTopic(ctx context.Context, processed *ProcessedTrends, gen ContentGenerator, topic string) TopicResult {
	res := TopicResult{Topic: topic}
	if processed.Seen(topic) {
		res.Status = StatusSkipped
		return res
	}

	content, err := gen.Generate(ctx, topic)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	filename, err := pl.publisher.Publish(ctx, content, topic)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	if filename == "" {
		res.Status = StatusFailed
		res.Err = generate.ErrEmptyResponse
		return res
	}

	processed.Mark(topic, pl.now())
	res.Status = StatusCreated
	res.Filename = filename
	return res
}
