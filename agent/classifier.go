package agent

import (
	"context"
	"strings"

	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
)

var newsMarkers = []string{
	"today",
	"latest",
	"breaking",
	"this week",
	"this month",
	"yesterday",
	"2025",
	"2024",
	"2023",
}

// ClassifyQuery labels a query as news or general using lexical temporal
// markers.
func ClassifyQuery(query string) string {
	lowered := strings.ToLower(query)
	for _, marker := range newsMarkers {
		if strings.Contains(lowered, marker) {
			return QueryTypeNews
		}
	}
	return QueryTypeGeneral
}

const classifierSystemPrompt = `You classify a user query as either "news" (time-sensitive, about current events) or "general" (stable knowledge).

Respond with exactly one word: news or general.`

// Classifier routes queries, optionally consulting an LLM when the lexical
// heuristic says general. Classification fails open to news so a provider
// outage never blocks retrieval.
type Classifier struct {
	completer llm.Completer
	logger    log.Logger
}

// NewClassifier creates a classifier. A nil completer leaves only the
// lexical heuristic.
func NewClassifier(completer llm.Completer) *Classifier {
	return &Classifier{completer: completer, logger: log.Default()}
}

// SetLogger replaces the classifier's logger.
func (c *Classifier) SetLogger(logger log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Classify returns "news" or "general" for query.
func (c *Classifier) Classify(ctx context.Context, query string) string {
	if ClassifyQuery(query) == QueryTypeNews {
		return QueryTypeNews
	}
	if c.completer == nil {
		return QueryTypeGeneral
	}

	raw, err := c.completer.Complete(ctx, classifierSystemPrompt, query)
	if err != nil {
		c.logger.Warnf("query classification failed, treating as news: %v", err)
		return QueryTypeNews
	}
	if strings.Contains(strings.ToLower(raw), "general") {
		return QueryTypeGeneral
	}
	return QueryTypeNews
}
