package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// Thresholds bound the heuristic sufficiency signals.
type Thresholds struct {
	MinChunks        int
	MinTopSimilarity float64
	MinAvgSimilarity float64
	MinContentLength int
}

// DefaultThresholds returns the thresholds tuned for news retrieval.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinChunks:        2,
		MinTopSimilarity: 0.45,
		MinAvgSimilarity: 0.35,
		MinContentLength: 200,
	}
}

// SufficiencyChecker decides whether retrieved chunks can answer a query or
// whether a web search fallback is needed. The heuristic path is always
// available; when a completer is set it is consulted first and the heuristic
// serves as the fallback.
type SufficiencyChecker struct {
	thresholds Thresholds
	completer  llm.Completer
	logger     log.Logger
}

// NewSufficiencyChecker creates a heuristic-only checker.
func NewSufficiencyChecker(thresholds Thresholds) *SufficiencyChecker {
	if thresholds.MinChunks <= 0 {
		thresholds = DefaultThresholds()
	}
	return &SufficiencyChecker{thresholds: thresholds, logger: log.Default()}
}

// WithCompleter enables the LLM-assisted check.
func (c *SufficiencyChecker) WithCompleter(completer llm.Completer) *SufficiencyChecker {
	c.completer = completer
	return c
}

// SetLogger replaces the checker's logger.
func (c *SufficiencyChecker) SetLogger(logger log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Check reports whether chunks suffice to answer query, with a human-readable
// reason either way.
func (c *SufficiencyChecker) Check(ctx context.Context, query string, chunks []news.RetrievedChunk) (bool, string) {
	if c.completer != nil {
		ok, reason, err := c.checkLLM(ctx, query, chunks)
		if err == nil {
			return ok, reason
		}
		c.logger.Warnf("llm sufficiency check failed, falling back to heuristic: %v", err)
	}
	return c.checkHeuristic(query, chunks)
}

func (c *SufficiencyChecker) checkHeuristic(query string, chunks []news.RetrievedChunk) (bool, string) {
	t := c.thresholds

	if len(chunks) < t.MinChunks {
		return false, fmt.Sprintf("only %d chunks retrieved (need at least %d)", len(chunks), t.MinChunks)
	}

	var top, sum float64
	totalContent := 0
	for _, ch := range chunks {
		if ch.Similarity > top {
			top = ch.Similarity
		}
		sum += ch.Similarity
		totalContent += len(ch.Content)
	}
	avg := sum / float64(len(chunks))

	if top < t.MinTopSimilarity {
		return false, fmt.Sprintf("top similarity %.2f below threshold %.2f", top, t.MinTopSimilarity)
	}
	if avg < t.MinAvgSimilarity {
		return false, fmt.Sprintf("average similarity %.2f below threshold %.2f", avg, t.MinAvgSimilarity)
	}
	if totalContent < t.MinContentLength {
		return false, fmt.Sprintf("total content length %d below threshold %d", totalContent, t.MinContentLength)
	}

	if missing := missingEntities(query, chunks); len(missing) > 0 {
		if len(missing) > 3 {
			missing = missing[:3]
		}
		return false, "missing key entities: " + strings.Join(missing, ", ")
	}

	if !temporallyRelevant(query, chunks) {
		return false, "query requires recent information but chunks may be outdated"
	}

	return true, "sufficient chunks with good similarity and coverage"
}

var (
	reQuoted  = regexp.MustCompile(`"([^"]+)"`)
	reNonWord = regexp.MustCompile(`[^\w]`)
)

// keyEntities extracts quoted phrases and capitalized words from the query,
// skipping the sentence-initial word and common question openers.
func keyEntities(query string) []string {
	var entities []string

	for _, m := range reQuoted.FindAllStringSubmatch(query, -1) {
		entities = append(entities, m[1])
	}

	skip := map[string]struct{}{
		"The": {}, "What": {}, "How": {}, "Why": {}, "When": {}, "Where": {},
	}
	words := strings.Fields(query)
	for i, word := range words {
		if i == 0 || len(word) <= 2 {
			continue
		}
		r := []rune(word)
		if r[0] < 'A' || r[0] > 'Z' {
			continue
		}
		clean := reNonWord.ReplaceAllString(word, "")
		if clean == "" {
			continue
		}
		if _, ok := skip[clean]; !ok {
			entities = append(entities, clean)
		}
	}
	return entities
}

func missingEntities(query string, chunks []news.RetrievedChunk) []string {
	entities := keyEntities(query)
	if len(entities) == 0 {
		return nil
	}

	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(strings.ToLower(c.Content))
		b.WriteByte(' ')
	}
	combined := b.String()

	var missing []string
	for _, e := range entities {
		if !strings.Contains(combined, strings.ToLower(e)) {
			missing = append(missing, e)
		}
	}
	return missing
}

var temporalMarkers = []string{
	"today", "yesterday", "this week", "this month",
	"latest", "recent", "just", "breaking", "now",
	"current", "new", "update",
}

// temporallyRelevant is conservative: a query with a temporal marker needs at
// least one chunk that carries a publication date.
func temporallyRelevant(query string, chunks []news.RetrievedChunk) bool {
	q := strings.ToLower(query)
	marked := false
	for _, m := range temporalMarkers {
		if strings.Contains(q, m) {
			marked = true
			break
		}
	}
	if !marked {
		return true
	}

	for _, c := range chunks {
		if c.PublishedAt != nil {
			return true
		}
	}
	return false
}

const sufficiencySystemPrompt = `You are a helpful assistant that evaluates whether provided context can answer a question.

Respond with ONLY a JSON object in this exact format:
{"sufficient": true/false, "reason": "brief explanation"}

Rules:
- "sufficient": true if the context contains enough information to answer the question accurately
- "sufficient": false if the context is missing key information, is off-topic, or is too vague
- Be conservative: if unsure, say false`

func (c *SufficiencyChecker) checkLLM(ctx context.Context, query string, chunks []news.RetrievedChunk) (bool, string, error) {
	if len(chunks) == 0 {
		return false, "no chunks retrieved", nil
	}

	var parts []string
	for i, ch := range chunks {
		if i >= 5 {
			break
		}
		content := ch.Content
		if len(content) > 500 {
			content = content[:500]
		}
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, content))
	}

	user := fmt.Sprintf("Question: %s\n\nContext:\n%s\n\nCan this context sufficiently answer the question?",
		query, strings.Join(parts, "\n\n"))

	raw, err := c.completer.Complete(ctx, sufficiencySystemPrompt, user)
	if err != nil {
		return false, "", err
	}

	var verdict struct {
		Sufficient bool   `json:"sufficient"`
		Reason     string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &verdict); err != nil {
		return false, "", fmt.Errorf("parse sufficiency verdict: %w", err)
	}
	if verdict.Reason == "" {
		verdict.Reason = "no reason provided"
	}
	return verdict.Sufficient, verdict.Reason, nil
}
