package agent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/askdocs/askdocs/internal/intent"
	"github.com/askdocs/askdocs/internal/retrieval"
	"github.com/askdocs/askdocs/internal/websearch"
)

func TestBuildMessages_Structure(t *testing.T) {
	state := newRequestState("question", []Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	})
	state.Intent = intent.General

	messages := buildMessages(state, "", 5)

	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4 (system + 2 history + user)", len(messages))
	}
	if messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[1].Content != "earlier question" || messages[2].Content != "earlier answer" {
		t.Error("history not carried over in order")
	}
	if messages[3].Role != "user" || !strings.Contains(messages[3].Content, "question") {
		t.Errorf("final message = %+v", messages[3])
	}
}

func TestBuildMessages_HistoryWindow(t *testing.T) {
	var history []Message
	for i := 0; i < 9; i++ {
		history = append(history, Message{Role: "user", Content: fmt.Sprintf("turn-%d", i)})
	}
	state := newRequestState("q", history)
	state.Intent = intent.General

	messages := buildMessages(state, "", 5)

	if len(messages) != 7 {
		t.Fatalf("got %d messages, want 7 (system + 5 history + user)", len(messages))
	}
	if messages[1].Content != "turn-4" {
		t.Errorf("oldest included turn = %q, want turn-4", messages[1].Content)
	}
	if messages[5].Content != "turn-8" {
		t.Errorf("newest included turn = %q, want turn-8", messages[5].Content)
	}
}

func TestBuildMessages_ProfileInstructions(t *testing.T) {
	state := newRequestState("q", nil)
	state.Intent = intent.General

	legal := buildMessages(state, "legal", 5)[0].Content
	if !strings.Contains(legal, "clause numbers") {
		t.Error("legal profile instructions missing from system message")
	}

	summary := buildMessages(state, "summary", 5)[0].Content
	if !strings.Contains(summary, "bullet points") {
		t.Error("summary profile instructions missing from system message")
	}

	plain := buildMessages(state, "", 5)[0].Content
	unknown := buildMessages(state, "no-such-profile", 5)[0].Content
	if plain != unknown {
		t.Error("unknown profile should behave like default")
	}
	if plain != buildMessages(state, "default", 5)[0].Content {
		t.Error("default profile should add nothing")
	}
}

func TestBuildUserPrompt_IntentNotes(t *testing.T) {
	state := newRequestState("q", nil)

	state.Intent = intent.DocDependent
	doc := buildUserPrompt(state)
	if !strings.Contains(doc, "user's own documents") {
		t.Error("doc-dependent note missing")
	}

	state.Intent = intent.General
	gen := buildUserPrompt(state)
	if !strings.Contains(gen, "general knowledge and reasoning") {
		t.Error("general note missing")
	}
}

func TestBuildUserPrompt_RAGContextLimitedToTopHits(t *testing.T) {
	state := newRequestState("q", nil)
	state.Intent = intent.DocDependent
	for i := 0; i < 5; i++ {
		state.RAGResult = append(state.RAGResult, retrieval.SearchResult{
			DocumentTitle: fmt.Sprintf("doc-%d", i),
			Snippet:       fmt.Sprintf("snippet-%d", i),
			Score:         float32(0.9) - float32(i)*0.1,
		})
	}

	prompt := buildUserPrompt(state)

	for i := 0; i < 3; i++ {
		if !strings.Contains(prompt, fmt.Sprintf("snippet-%d", i)) {
			t.Errorf("prompt missing snippet-%d", i)
		}
	}
	for i := 3; i < 5; i++ {
		if strings.Contains(prompt, fmt.Sprintf("snippet-%d", i)) {
			t.Errorf("prompt includes snippet-%d beyond the hit cap", i)
		}
	}
	if !strings.Contains(prompt, "Similarity: 0.90") {
		t.Error("prompt missing formatted similarity score")
	}
}

func TestBuildUserPrompt_EmptyRetrievalPlaceholder(t *testing.T) {
	state := newRequestState("q", nil)
	state.Intent = intent.DocDependent

	prompt := buildUserPrompt(state)
	if !strings.Contains(prompt, "no useful information was retrieved") {
		t.Error("empty retrieval placeholder missing")
	}
}

func TestBuildUserPrompt_WebSectionOnlyWhenPresent(t *testing.T) {
	state := newRequestState("q", nil)
	state.Intent = intent.General

	if strings.Contains(buildUserPrompt(state), "web search") {
		t.Error("web section present without web results")
	}

	state.WebResult = []websearch.Hit{
		{Title: "News", URL: "https://example.com/a", Content: "today's update"},
	}
	prompt := buildUserPrompt(state)
	if !strings.Contains(prompt, "Reference material (web search):") {
		t.Error("web section missing")
	}
	if !strings.Contains(prompt, "https://example.com/a") {
		t.Error("web hit URL missing")
	}
}

func TestFormatRAGContext_UntitledFallback(t *testing.T) {
	state := newRequestState("q", nil)
	state.RAGResult = []retrieval.SearchResult{{Snippet: "text", Score: 0.5}}

	if !strings.Contains(formatRAGContext(state), "(untitled)") {
		t.Error("untitled documents should render a placeholder title")
	}
}
