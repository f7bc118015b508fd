package agent

import (
	"fmt"
	"strings"

	"github.com/askdocs/askdocs/internal/intent"
	"github.com/askdocs/askdocs/internal/llm"
)

const (
	promptRAGHits = 3
	promptWebHits = 3
)

const baseSystemPrompt = `You are an assistant that answers user questions carefully and precisely.
Answer in the same language as the question.
When the provided reference material covers the question, cite it concretely.
When something is not in the reference material, say so explicitly instead of guessing.`

// answerProfiles are optional extra instructions selectable per request.
var answerProfiles = map[string]string{
	"default": "",
	"legal": `Focus on legal review: mention clause numbers and structure where possible,
avoid categorical statements, and note assumptions, limitations, and risks.
Distinguish clearly between general commentary and statements grounded in the
user's documents.`,
	"summary": `Summarize concisely. Prefer bullet points for key findings and briefly flag
open questions or missing prerequisites.`,
}

// docDependentNote instructs the model to prioritize retrieved context and
// flag gaps rather than inventing document content.
const docDependentNote = `The reference material below comes from the user's own documents.
Base your answer on it, and do not invent content that it does not state.
If the documents do not cover a point, say that the documents do not mention it.`

// generalNote allows blending reference material with general knowledge.
const generalNote = `Answer from general knowledge and reasoning. If reference material is
provided below, you may draw on it; note clearly when something cannot be
determined from the available information.`

// buildMessages assembles the synthesis request: system instructions, the
// last historyTurns turns of conversation, and one user message carrying
// the question plus formatted reference material.
func buildMessages(state *RequestState, profile string, historyTurns int) []llm.Message {
	system := baseSystemPrompt
	if extra, ok := answerProfiles[profile]; ok && extra != "" {
		system += "\n\n" + extra
	}

	messages := []llm.Message{{Role: "system", Content: system}}

	history := state.ChatHistory
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	messages = append(messages, llm.Message{Role: "user", Content: buildUserPrompt(state)})
	return messages
}

func buildUserPrompt(state *RequestState) string {
	var sb strings.Builder

	sb.WriteString("Question:\n")
	sb.WriteString(state.Input)
	sb.WriteString("\n\n")

	if state.Intent == intent.DocDependent {
		sb.WriteString(docDependentNote)
	} else {
		sb.WriteString(generalNote)
	}
	sb.WriteString("\n")

	sb.WriteString("\nReference material (document search):\n")
	sb.WriteString(formatRAGContext(state))

	if len(state.WebResult) > 0 {
		sb.WriteString("\n\nReference material (web search):\n")
		sb.WriteString(formatWebContext(state))
	}

	return sb.String()
}

// formatRAGContext renders the top retrieved chunks with title, similarity
// score, and snippet.
func formatRAGContext(state *RequestState) string {
	if len(state.RAGResult) == 0 {
		return "(no useful information was retrieved from the user's documents)"
	}

	var lines []string
	for i, r := range state.RAGResult[:min(promptRAGHits, len(state.RAGResult))] {
		title := r.DocumentTitle
		if title == "" {
			title = "(untitled)"
		}
		lines = append(lines, fmt.Sprintf("[%d] Title: %s\n    Similarity: %.2f\n    Excerpt: %s", i+1, title, r.Score, r.Snippet))
	}
	return strings.Join(lines, "\n\n")
}

// formatWebContext renders the top web hits with title, URL, and snippet.
func formatWebContext(state *RequestState) string {
	var lines []string
	for i, h := range state.WebResult[:min(promptWebHits, len(state.WebResult))] {
		lines = append(lines, fmt.Sprintf("[%d] Title: %s\n    URL: %s\n    Excerpt: %s", i+1, h.Title, h.URL, h.Content))
	}
	return strings.Join(lines, "\n\n")
}
