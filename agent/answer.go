package agent

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

const answerSystemPrompt = `You are a helpful news assistant that answers questions based on provided source material.

CRITICAL RULES:
1. ONLY use information from the provided sources. Do not use prior knowledge.
2. Cite sources using [Source N] format after each claim.
3. If the sources don't contain enough information to fully answer the question, explicitly say so.
4. If sources disagree, present both viewpoints with their respective citations.
5. Be concise but thorough.
6. Never make up information not in the sources.

You MUST respond with valid JSON in this exact format:
{
    "answer": "Your answer text with [Source N] citations",
    "sources_used": [1, 2, 3],
    "confidence": "high" | "medium" | "low",
    "missing_info": "Description of what info is missing, or null if complete"
}`

const followupSystemPrompt = `You are a helpful news assistant answering follow-up questions about previously retrieved news articles.

CRITICAL RULES:
1. ONLY use information from the provided sources. Do not use prior knowledge.
2. Cite sources using [Source N] format after each claim.
3. If the sources don't contain the answer, say "Based on the available sources, I don't have information about..."
4. You can explain, expand on, or clarify information from the sources.
5. You can provide direct quotes from sources when relevant.
6. Be conversational but accurate.

You MUST respond with valid JSON in this exact format:
{
    "answer": "Your answer text with [Source N] citations",
    "sources_used": [1, 2, 3],
    "confidence": "high" | "medium" | "low",
    "missing_info": "Description of what info is missing, or null if complete"
}`

// GeneratedAnswer is the parsed output of an answer-generation call.
// SourcesUsed holds 1-based indexes into the chunk list the model was shown.
type GeneratedAnswer struct {
	Answer      string `json:"answer"`
	SourcesUsed []int  `json:"sources_used"`
	Confidence  string `json:"confidence"`
	MissingInfo string `json:"missing_info"`
}

// AnswerGenerator produces grounded answers from retrieved chunks.
type AnswerGenerator struct {
	completer llm.Completer
	logger    log.Logger
}

// NewAnswerGenerator creates an answer generator backed by completer.
func NewAnswerGenerator(completer llm.Completer) *AnswerGenerator {
	return &AnswerGenerator{completer: completer, logger: log.Default()}
}

// SetLogger replaces the generator's logger.
func (g *AnswerGenerator) SetLogger(logger log.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

func formatSources(chunks []news.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No sources available."
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Source %d]\nTitle: %s\nPublisher: %s\nURL: %s\nContent:\n%s",
			i+1, c.Title, c.Source, c.URL, c.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

var reJSONObject = regexp.MustCompile(`(?s)\{[^{}]*\}`)

func parseAnswer(raw string) GeneratedAnswer {
	cleaned := llm.StripCodeFences(raw)

	var out GeneratedAnswer
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		return out
	}
	if m := reJSONObject.FindString(cleaned); m != "" {
		if err := json.Unmarshal([]byte(m), &out); err == nil {
			return out
		}
	}
	// Unparseable output still yields a usable answer.
	return GeneratedAnswer{
		Answer:      cleaned,
		Confidence:  "low",
		MissingInfo: "Response parsing failed",
	}
}

// Generate answers query from chunks. followup selects the conversational
// prompt.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, chunks []news.RetrievedChunk, followup bool) (GeneratedAnswer, error) {
	system := answerSystemPrompt
	if followup {
		system = followupSystemPrompt
	}

	user := fmt.Sprintf("Question: %s\n\nSources:\n%s", query, formatSources(chunks))

	g.logger.Debugf("generate answer for %q over %d chunks (followup=%v)", query, len(chunks), followup)
	raw, err := g.completer.Complete(ctx, system, user)
	if err != nil {
		return GeneratedAnswer{}, fmt.Errorf("answer call: %w", err)
	}
	return parseAnswer(raw), nil
}

// MapSourcesUsed converts the model's 1-based source indexes into article
// references, falling back to all chunk sources when nothing maps.
func MapSourcesUsed(used []int, chunks []news.RetrievedChunk) []news.SourceRef {
	var picked []news.RetrievedChunk
	for _, n := range used {
		if n >= 1 && n <= len(chunks) {
			picked = append(picked, chunks[n-1])
		}
	}
	if len(picked) == 0 {
		picked = chunks
	}
	return news.SourceRefsFromChunks(picked)
}
