// Package intent classifies whether a question needs grounding in the
// indexed documents. The primary path asks the language model for a single
// label; a keyword heuristic takes over when the model is unavailable or
// answers off-script.
package intent

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/askdocs/askdocs/internal/llm"
)

const classificationTimeout = 3 * time.Second

// Intent is the pipeline's classification of a question.
type Intent string

const (
	Unset        Intent = ""
	DocDependent Intent = "doc_dependent"
	General      Intent = "general"
)

// Method records which classification path produced the result.
type Method string

const (
	MethodLLM     Method = "llm"
	MethodKeyword Method = "keyword"
)

// Result is a classification outcome plus a human-readable rationale for
// the audit trail.
type Result struct {
	Intent    Intent
	Method    Method
	Rationale string
}

// Chatter is the completion interface the classifier needs.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// docKeywords are terms that usually refer to material the user has on hand.
// Any match classifies the question as document-dependent.
var docKeywords = []string{
	"この契約書", "以下の文書", "ドキュメント", "NDA", "業務委託",
	"この文書", "添付",
	"this agreement", "this contract", "the attached", "attached document",
	"the document", "nda", "uploaded",
}

const classifyPrompt = `You are a routing classifier for a question answering system.
Decide whether answering the user's question requires consulting the user's own
uploaded documents, or whether general knowledge suffices.

Respond with exactly one word:
- "doc_dependent" if the question refers to the user's documents
- "general" otherwise

No other text.`

// Classifier decides whether a question is document-dependent.
type Classifier struct {
	client Chatter
	logger *slog.Logger
}

// New creates a Classifier. A nil client disables the model path; the
// keyword heuristic is then the only route.
func New(client Chatter) *Classifier {
	return &Classifier{client: client, logger: slog.Default()}
}

// Classify labels the input as doc_dependent or general. It never fails:
// any model problem falls back to the keyword heuristic.
func (c *Classifier) Classify(ctx context.Context, input string) Result {
	if c.client != nil {
		if res, ok := c.classifyLLM(ctx, input); ok {
			return res
		}
	}
	return c.classifyKeywords(input)
}

func (c *Classifier) classifyLLM(ctx context.Context, input string) (Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, classificationTimeout)
	defer cancel()

	raw, err := c.client.Chat(ctx, []llm.Message{
		{Role: "system", Content: classifyPrompt},
		{Role: "user", Content: input},
	})
	if err != nil {
		c.logger.Warn("intent classification call failed, falling back to keywords", "error", err)
		return Result{}, false
	}

	label := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(label, "doc"):
		return Result{
			Intent:    DocDependent,
			Method:    MethodLLM,
			Rationale: "model classified the question as document-dependent",
		}, true
	case strings.HasPrefix(label, "gen"):
		return Result{
			Intent:    General,
			Method:    MethodLLM,
			Rationale: "model classified the question as answerable from general knowledge",
		}, true
	}

	c.logger.Warn("intent classification returned unrecognized label, falling back to keywords", "label", label)
	return Result{}, false
}

func (c *Classifier) classifyKeywords(input string) Result {
	lowered := strings.ToLower(input)
	for _, kw := range docKeywords {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return Result{
				Intent:    DocDependent,
				Method:    MethodKeyword,
				Rationale: "keyword match on " + strconv.Quote(kw),
			}
		}
	}
	return Result{
		Intent:    General,
		Method:    MethodKeyword,
		Rationale: "no document-referring terms found",
	}
}
