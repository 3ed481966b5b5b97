package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

const summarizerSystemPrompt = `You are an AI news summarization agent.

You receive:
- A topic (user query about current news).
- A list of news article excerpts, each with an ID, title, source,
  URL, and text content.

Your tasks:
1. Write a concise summary (3-7 bullet points) of the most important
   facts about the topic.
2. After every factual claim, include square-bracket citations that
   reference one or more article IDs, e.g.:
   "The central bank raised interest rates by 0.25 percentage points.[1,3]"
3. If different sources disagree, describe the disagreement explicitly
   and cite both sides.
4. Do not speculate beyond what the sources say.
5. If the sources do not provide enough information to answer part of
   the request, say this explicitly.

You MUST respond as valid JSON with the following shape:

{
  "summary_text": "<full multi-paragraph summary>",
  "sentences": [
    {
      "text": "...",
      "source_ids": ["1", "3"]
    }
  ]
}

Do not include any fields other than those specified.`

type summarizerArticle struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type summarizerInput struct {
	Topic    string              `json:"topic"`
	Articles []summarizerArticle `json:"articles"`
}

func summarizerPayload(topic string, articles []news.Article) summarizerInput {
	in := summarizerInput{Topic: topic, Articles: make([]summarizerArticle, len(articles))}
	for i, a := range articles {
		in.Articles[i] = summarizerArticle{
			ID:      a.ID,
			Title:   a.Title,
			Source:  a.Source,
			URL:     a.URL,
			Content: a.Content,
		}
	}
	return in
}

// Summarizer produces cited summaries from article sets via a single LLM
// call.
type Summarizer struct {
	completer llm.Completer
	model     string
	logger    log.Logger
}

// NewSummarizer creates a summarizer. The model name is recorded in summary
// metadata only.
func NewSummarizer(completer llm.Completer, model string) *Summarizer {
	return &Summarizer{completer: completer, model: model, logger: log.Default()}
}

// SetLogger replaces the summarizer's logger.
func (s *Summarizer) SetLogger(logger log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Summarize asks the model for a cited summary of articles about topic.
// An empty article set short-circuits to a placeholder summary without
// calling the model. Citations pointing at unknown article IDs are dropped.
func (s *Summarizer) Summarize(ctx context.Context, topic string, articles []news.Article) (*news.Summary, error) {
	if len(articles) == 0 {
		s.logger.Infof("summarize %q: no articles, returning placeholder", topic)
		return &news.Summary{
			Topic:       topic,
			SummaryText: "No relevant articles were retrieved for this topic.",
			Sentences:   []news.SummarySentence{},
			Sources:     []news.Article{},
			Meta:        map[string]any{"warning": ErrNoArticles},
		}, nil
	}

	payload, err := json.Marshal(summarizerPayload(topic, articles))
	if err != nil {
		return nil, fmt.Errorf("marshal summarizer input: %w", err)
	}

	s.logger.Infof("summarize %q over %d articles", topic, len(articles))
	raw, err := s.completer.Complete(ctx, summarizerSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("summarizer call: %w", err)
	}

	var out struct {
		SummaryText *string                `json:"summary_text"`
		Sentences   []news.SummarySentence `json:"sentences"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("summarizer returned non-JSON content: %w", err)
	}
	if out.SummaryText == nil {
		return nil, fmt.Errorf("summarizer JSON missing required keys")
	}

	summary := &news.Summary{
		Topic:       topic,
		SummaryText: *out.SummaryText,
		Sentences:   out.Sentences,
		Sources:     articles,
		Meta:        map[string]any{"model": s.model},
	}
	summary.FilterCitations()
	return summary, nil
}
