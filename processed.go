package autoblog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ProcessedRecord is the value stored for each processed topic fingerprint.
type ProcessedRecord struct {
	Topic string `json:"topic"`
	Date  string `json:"date"`
}

// ProcessedTrends is the seen-set of topics already turned into posts, kept
// as a JSON object keyed by Fingerprint.
type ProcessedTrends struct {
	path      string
	retention time.Duration
	records   map[string]ProcessedRecord
	mu        sync.RWMutex
}

// LoadProcessedTrends reads the record at path. A missing or empty file is an
// empty set. With a positive retention, records older than it are dropped.
func LoadProcessedTrends(path string, retention time.Duration) (*ProcessedTrends, error) {
	p := &ProcessedTrends{
		path:      path,
		retention: retention,
		records:   make(map[string]ProcessedRecord),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read processed trends: %w", err)
	}
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p.records); err != nil {
		return nil, fmt.Errorf("parse processed trends: %w", err)
	}
	if p.records == nil {
		p.records = make(map[string]ProcessedRecord)
	}
	p.prune(time.Now())
	return p, nil
}

func (p *ProcessedTrends) prune(now time.Time) {
	if p.retention <= 0 {
		return
	}
	cutoff := now.Add(-p.retention)
	for fp, rec := range p.records {
		at, err := time.ParseInLocation(dateLayout, rec.Date, time.Local)
		if err != nil {
			continue
		}
		if at.Before(cutoff) {
			delete(p.records, fp)
		}
	}
}

// Seen reports whether topic has already been processed.
func (p *ProcessedTrends) Seen(topic string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.records[Fingerprint(topic)]
	return ok
}

// Mark records topic as processed at the given time.
func (p *ProcessedTrends) Mark(topic string, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[Fingerprint(topic)] = ProcessedRecord{
		Topic: topic,
		Date:  at.Format(dateLayout),
	}
}

// Len returns the number of recorded topics.
func (p *ProcessedTrends) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}

// Save writes the record back to its file.
func (p *ProcessedTrends) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.records, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal processed trends: %w", err)
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create processed trends dir: %w", err)
		}
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write processed trends: %w", err)
	}
	return nil
}
