package views

import "time"

// Page is everything the static blog page template needs.
type Page struct {
	Title           string
	MetaDescription string
	Keywords        []string
	Body            string // trusted HTML from the generator
	Published       time.Time
	SiteName        string // footer and JSON-LD publisher
	SiteURL         string // base for the canonical link; may be empty
	Filename        string
}

// Post is a generated post as listed in the control panel.
type Post struct {
	ID          int64
	Title       string
	Topic       string
	Filename    string
	CreatedDate string
	Downloaded  bool
	FileExists  bool
}

// TopicResult is one line of a pipeline report.
type TopicResult struct {
	Topic    string
	Status   string
	Filename string
	Error    string
}

// Report summarizes the last pipeline or demo run for the dashboard.
type Report struct {
	RunID      string
	FetchError string
	Results    []TopicResult
}

// Settings are the operator's request-scoped credentials and model choice.
// Keys are never echoed back; only whether they are set.
type Settings struct {
	HasNewsKey  bool
	HasLLMKey   bool
	Provider    string
	Model       string
	Models      []string
	Providers   []string
	TrendSource string
}

// Dashboard is the control panel's main view model.
type Dashboard struct {
	SiteName   string
	Available  []Post
	Downloaded []Post
	Settings   Settings
	Report     *Report
	Message    string
	CSRFToken  string
}
