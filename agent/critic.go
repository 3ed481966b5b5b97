package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

const criticSystemPrompt = `You are a fact-checking assistant.

You are given:
- A draft summary consisting of sentences, each with citations to
  article IDs.
- The full text content of those articles.

For each sentence:
1. Decide whether the claim is fully supported, partially supported,
   or unsupported by the cited sources.
2. If unsupported or only partially supported, explain why.
3. Suggest corrections if possible.

You MUST respond as valid JSON with the following shape:

{
  "overall_verdict": "accept" | "revise",
  "issues": [
    {
      "sentence_index": 0,
      "verdict": "supported" | "partial" | "unsupported",
      "reason": "...",
      "suggested_fix": "..." | null
    }
  ]
}

The calling agent will use 'overall_verdict' to decide whether to
regenerate the summary.`

type criticInput struct {
	SummaryText string                 `json:"summary_text"`
	Sentences   []news.SummarySentence `json:"sentences"`
	Articles    []summarizerArticle    `json:"articles"`
}

// Critic runs the verification pass over a draft summary.
type Critic struct {
	completer llm.Completer
	logger    log.Logger
}

// NewCritic creates a critic backed by completer.
func NewCritic(completer llm.Completer) *Critic {
	return &Critic{completer: completer, logger: log.Default()}
}

// SetLogger replaces the critic's logger.
func (c *Critic) SetLogger(logger log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Verify asks the model to fact-check summary against its articles.
func (c *Critic) Verify(ctx context.Context, summary *news.Summary, articles []news.Article) (*news.Verification, error) {
	in := criticInput{
		SummaryText: summary.SummaryText,
		Sentences:   summary.Sentences,
		Articles:    summarizerPayload(summary.Topic, articles).Articles,
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal critic input: %w", err)
	}

	c.logger.Infof("verify summary %q against %d articles", summary.Topic, len(articles))
	raw, err := c.completer.Complete(ctx, criticSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("critic call: %w", err)
	}

	var out struct {
		OverallVerdict *string                  `json:"overall_verdict"`
		Issues         []news.VerificationIssue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("critic returned non-JSON content: %w", err)
	}
	if out.OverallVerdict == nil {
		return nil, fmt.Errorf("critic JSON missing required keys")
	}

	return &news.Verification{
		OverallVerdict: *out.OverallVerdict,
		Issues:         out.Issues,
	}, nil
}
