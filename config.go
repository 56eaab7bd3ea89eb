package autoblog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for an autoblog instance.
type Config struct {
	Name string `yaml:"site_name"` // Site name for page footers (default "AutoBlog")
	URL  string `yaml:"site_url"`  // Public base URL of the generated pages; optional

	Addr               string        `yaml:"addr"`                // Listen address (default ":8501")
	DatabasePath       string        `yaml:"database_path"`       // SQLite path (default "data/blogs.db")
	OutputDir          string        `yaml:"output_dir"`          // Generated pages (default "generated_blogs")
	ProcessedPath      string        `yaml:"processed_path"`      // Seen-topic record (default "processed_trends.json")
	ProcessedRetention time.Duration `yaml:"processed_retention"` // 0 keeps records forever

	AdminPassword     string `yaml:"admin_password"`      // Required for serve
	AdminPasswordFile string `yaml:"admin_password_file"` // Read when AdminPassword is empty
	SessionSecret     string `yaml:"session_secret"`      // Required for serve
	CookieSecure      bool   `yaml:"cookie_secure"`       // Set true for HTTPS

	TrendSource string `yaml:"trend_source"`  // "newsapi" (default) or "feed"
	FeedURL     string `yaml:"feed_url"`      // Used by the feed source
	NewsCountry string `yaml:"news_country"`  // default "us"
	NewsBaseURL string `yaml:"news_base_url"` // default "https://newsapi.org"

	Provider       string        `yaml:"provider"`        // default "gemini"
	Model          string        `yaml:"model"`           // default per provider
	ModelCacheTTL  time.Duration `yaml:"model_cache_ttl"` // default 10m
	RequestTimeout time.Duration `yaml:"request_timeout"` // trend fetch timeout (default 30s)
}

// Trend source names.
const (
	SourceNewsAPI = "newsapi"
	SourceFeed    = "feed"
)

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "AutoBlog"
	}
	if c.Addr == "" {
		c.Addr = ":8501"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blogs.db"
	}
	if c.OutputDir == "" {
		c.OutputDir = "generated_blogs"
	}
	if c.ProcessedPath == "" {
		c.ProcessedPath = "processed_trends.json"
	}
	if c.TrendSource == "" {
		c.TrendSource = SourceNewsAPI
	}
	if c.NewsCountry == "" {
		c.NewsCountry = "us"
	}
	if c.ModelCacheTTL == 0 {
		c.ModelCacheTTL = 10 * time.Minute
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// LoadConfig reads the optional YAML file at path, applies environment
// overrides and fills defaults. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("autoblog: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("autoblog: parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.resolveAdminPassword(); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SITE_NAME":           &c.Name,
		"SITE_URL":            &c.URL,
		"ADDR":                &c.Addr,
		"DATABASE_PATH":       &c.DatabasePath,
		"OUTPUT_DIR":          &c.OutputDir,
		"PROCESSED_PATH":      &c.ProcessedPath,
		"ADMIN_PASSWORD":      &c.AdminPassword,
		"ADMIN_PASSWORD_FILE": &c.AdminPasswordFile,
		"SESSION_SECRET":      &c.SessionSecret,
		"TREND_SOURCE":        &c.TrendSource,
		"FEED_URL":            &c.FeedURL,
		"NEWS_COUNTRY":        &c.NewsCountry,
		"NEWS_BASE_URL":       &c.NewsBaseURL,
		"LLM_PROVIDER":        &c.Provider,
		"LLM_MODEL":           &c.Model,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"PROCESSED_RETENTION": &c.ProcessedRetention,
		"MODEL_CACHE_TTL":     &c.ModelCacheTTL,
		"REQUEST_TIMEOUT":     &c.RequestTimeout,
	}
	for key, dst := range durations {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("autoblog: %s: %w", key, err)
		}
		*dst = d
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("autoblog: COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	return nil
}

// resolveAdminPassword reads the password from AdminPasswordFile when it is
// not given directly, e.g. a mounted secret.
func (c *Config) resolveAdminPassword() error {
	if c.AdminPassword != "" || c.AdminPasswordFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.AdminPasswordFile)
	if err != nil {
		return fmt.Errorf("autoblog: read admin password file: %w", err)
	}
	c.AdminPassword = strings.TrimSpace(string(data))
	if c.AdminPassword == "" {
		return errors.New("autoblog: admin password file is empty")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithSourceFactory replaces how the trend source is built for a run.
func WithSourceFactory(fn SourceFactory) Option {
	return func(a *App) {
		a.newSource = fn
	}
}

// WithGeneratorFactory replaces how the content generator is built for a run.
func WithGeneratorFactory(fn GeneratorFactory) Option {
	return func(a *App) {
		a.newGenerator = fn
	}
}

// WithModelLister replaces how provider model lists are fetched.
func WithModelLister(fn ModelLister) Option {
	return func(a *App) {
		a.listModels = fn
	}
}
