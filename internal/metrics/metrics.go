package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TopicsFetched int64
	TopicsSkipped int64
	TopicsFailed  int64
	PostsCreated  int64
	DemoPosts     int64
	Downloads     int64

	// Timings
	LastRunDuration time.Duration
	TotalRunTime    time.Duration
	RunCount        int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) AddTopicsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsFetched += int64(n)
}

func (m *Metrics) IncrementSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsSkipped++
}

func (m *Metrics) IncrementFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsFailed++
}

func (m *Metrics) IncrementCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsCreated++
}

func (m *Metrics) AddDemoPosts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DemoPosts += int64(n)
}

func (m *Metrics) AddDownloads(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Downloads += int64(n)
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunTime += duration
	m.RunCount++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if m.RunCount > 0 {
		avg = m.TotalRunTime / time.Duration(m.RunCount)
	}

	stats := map[string]interface{}{
		"topics_fetched":       m.TopicsFetched,
		"topics_skipped":       m.TopicsSkipped,
		"topics_failed":        m.TopicsFailed,
		"posts_created":        m.PostsCreated,
		"demo_posts":           m.DemoPosts,
		"downloads":            m.Downloads,
		"runs":                 m.RunCount,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"average_run_ms":       avg.Milliseconds(),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
	if !m.LastRunTime.IsZero() {
		stats["last_run_time"] = m.LastRunTime.Format(time.RFC3339)
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
