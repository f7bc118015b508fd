// Package agent runs the question-answering pipeline: intent analysis,
// conditional document retrieval, conditional web search, and answer
// synthesis, over a per-request state with an auditable step trace.
package agent

import (
	"fmt"

	"github.com/askdocs/askdocs/internal/intent"
	"github.com/askdocs/askdocs/internal/retrieval"
	"github.com/askdocs/askdocs/internal/websearch"
)

// Source identifies the primary information source of an answer.
type Source string

const (
	SourceUnset Source = ""
	SourceRAG   Source = "rag"
	SourceLLM   Source = "llm"
)

// Action identifies which pipeline stage produced a step log entry.
type Action string

const (
	ActionAnalysis  Action = "analysis"
	ActionRAG       Action = "rag"
	ActionWebSearch Action = "web-search"
	ActionAnswer    Action = "answer"
)

// StepLog is one entry of the audit trail. StepIDs are contiguous and
// strictly increasing within a request, starting at 1.
type StepLog struct {
	StepID  int    `json:"step_id"`
	Action  Action `json:"action"`
	Content string `json:"content"`
}

// Reference points at a source offered to the model during synthesis.
type Reference struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestState is the mutable record threaded through one pipeline run.
// It is owned exclusively by that run and never shared across requests.
type RequestState struct {
	Input       string
	Intent      intent.Intent
	Source      Source
	RAGResult   []retrieval.SearchResult
	WebResult   []websearch.Hit
	ChatHistory []Message
	Output      string
	Steps       []StepLog
	References  []Reference
}

func newRequestState(input string, history []Message) *RequestState {
	return &RequestState{
		Input:       input,
		ChatHistory: history,
	}
}

// addStep appends an audit entry with the next sequential step ID.
func (s *RequestState) addStep(action Action, format string, args ...any) {
	s.Steps = append(s.Steps, StepLog{
		StepID:  len(s.Steps) + 1,
		Action:  action,
		Content: fmt.Sprintf(format, args...),
	})
}
