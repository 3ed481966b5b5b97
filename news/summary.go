package news

import "fmt"

// SummarySentence is a single claim in a summary together with the article
// IDs that support it.
type SummarySentence struct {
	Text      string   `json:"text"`
	SourceIDs []string `json:"source_ids"`
}

// Summary is the structured output of the summarizer.
type Summary struct {
	Topic       string            `json:"topic"`
	SummaryText string            `json:"summary_text"`
	Sentences   []SummarySentence `json:"sentences"`
	Sources     []Article         `json:"sources"`
	Meta        map[string]any    `json:"meta,omitempty"`
}

// ValidateCitations checks the citation invariant: every source ID cited by
// a sentence must refer to an article in the summary's source list.
func (s *Summary) ValidateCitations() error {
	known := make(map[string]struct{}, len(s.Sources))
	for _, a := range s.Sources {
		known[a.ID] = struct{}{}
	}
	for i, sentence := range s.Sentences {
		for _, id := range sentence.SourceIDs {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("sentence %d cites unknown source %q", i, id)
			}
		}
	}
	return nil
}

// FilterCitations drops citation IDs that do not correspond to any source
// article, so that a malformed LLM response can never violate the citation
// invariant.
func (s *Summary) FilterCitations() {
	known := make(map[string]struct{}, len(s.Sources))
	for _, a := range s.Sources {
		known[a.ID] = struct{}{}
	}
	for i := range s.Sentences {
		kept := s.Sentences[i].SourceIDs[:0]
		for _, id := range s.Sentences[i].SourceIDs {
			if _, ok := known[id]; ok {
				kept = append(kept, id)
			}
		}
		s.Sentences[i].SourceIDs = kept
	}
}

// VerificationIssue is the critic's judgement on one summary sentence.
type VerificationIssue struct {
	SentenceIndex int    `json:"sentence_index"`
	Verdict       string `json:"verdict"` // "supported", "partial" or "unsupported"
	Reason        string `json:"reason"`
	SuggestedFix  string `json:"suggested_fix,omitempty"`
}

// Verification is the critic's verdict over a whole summary.
type Verification struct {
	OverallVerdict string              `json:"overall_verdict"` // "accept" or "revise"
	Issues         []VerificationIssue `json:"issues,omitempty"`
}
