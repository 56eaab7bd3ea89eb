// Package trends fetches candidate blog topics from headline sources.
package trends

import (
	"context"
	"strings"
)

// MaxTopics is the number of topics a source returns at most.
const MaxTopics = 5

// topicWords is how many leading words of a headline form a topic.
const topicWords = 5

// Source yields the current list of candidate topics.
type Source interface {
	Name() string
	Topics(ctx context.Context) ([]string, error)
}

// ExtractTopics turns headline titles into topics: the first five words of
// each title, skipping empty titles and titles containing "null" in any
// case. At most MaxTopics are returned, in source order.
func ExtractTopics(titles []string) []string {
	topics := make([]string, 0, MaxTopics)
	for _, title := range titles {
		if len(topics) == MaxTopics {
			break
		}
		if strings.TrimSpace(title) == "" || strings.Contains(strings.ToLower(title), "null") {
			continue
		}
		words := strings.Fields(title)
		if len(words) > topicWords {
			words = words[:topicWords]
		}
		topics = append(topics, strings.Join(words, " "))
	}
	return topics
}
