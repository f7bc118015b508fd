package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/askdocs/askdocs/internal/intent"
	"github.com/askdocs/askdocs/internal/llm"
	"github.com/askdocs/askdocs/internal/retrieval"
	"github.com/askdocs/askdocs/internal/websearch"
)

// Completer is the completion interface used for answer synthesis.
type Completer interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// DocumentSearcher is the retrieval service interface: fail-open search
// over the document index.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, limit int) []retrieval.SearchResult
	Count() int
}

// WebSearcher is the external live-search provider interface.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Hit, error)
}

// webTriggers are terms implying the question needs live information.
// Their presence activates the web search stage.
var webTriggers = []string{
	"latest", "today", "current", "news", "stock price", "search the web",
	"最新", "今日", "現在", "ニュース", "株価", "検索して",
}

// Config tunes the pipeline. Zero values select the defaults.
type Config struct {
	RetrievalLimit int // chunks requested from retrieval (default 10)
	WebMaxResults  int // cap on web search hits (default 5)
	HistoryTurns   int // history turns included in the prompt (default 5)
}

func (c Config) withDefaults() Config {
	if c.RetrievalLimit <= 0 {
		c.RetrievalLimit = 10
	}
	if c.WebMaxResults <= 0 {
		c.WebMaxResults = 5
	}
	if c.HistoryTurns <= 0 {
		c.HistoryTurns = 5
	}
	return c
}

// Pipeline executes the fixed stage order
// IntentAnalysis -> Retrieval -> ExternalSearch -> Synthesis.
// Stages always run in order; conditionality lives inside each stage.
// A nil retriever puts the pipeline in degraded no-retrieval mode; a nil
// web searcher removes the external search stage entirely.
type Pipeline struct {
	classifier *intent.Classifier
	retriever  DocumentSearcher
	searcher   WebSearcher
	completer  Completer
	cfg        Config
	logger     *slog.Logger
}

// New creates a Pipeline wired to its collaborators.
func New(classifier *intent.Classifier, retriever DocumentSearcher, searcher WebSearcher, completer Completer, cfg Config) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		retriever:  retriever,
		searcher:   searcher,
		completer:  completer,
		cfg:        cfg.withDefaults(),
		logger:     slog.Default(),
	}
}

// Run processes one question to completion. It never returns an error:
// every stage absorbs its own failures, and the worst case is an apology
// answer. profile optionally selects an answer profile (see prompt.go).
func (p *Pipeline) Run(ctx context.Context, input string, history []Message, profile string) *RequestState {
	state := newRequestState(input, history)

	p.analyzeIntent(ctx, state)
	p.retrieve(ctx, state)
	if p.searcher != nil {
		p.webSearch(ctx, state)
	}
	p.synthesize(ctx, state, profile)

	p.logger.Info("pipeline finished",
		"intent", string(state.Intent),
		"source", string(state.Source),
		"rag_hits", len(state.RAGResult),
		"web_hits", len(state.WebResult),
		"steps", len(state.Steps),
	)
	return state
}

// analyzeIntent classifies the question and routes the request.
func (p *Pipeline) analyzeIntent(ctx context.Context, state *RequestState) {
	res := p.classifier.Classify(ctx, state.Input)
	state.Intent = res.Intent

	if res.Intent == intent.DocDependent {
		state.Source = SourceRAG
		state.addStep(ActionAnalysis, "intent analysis (%s): document-dependent, %s", res.Method, res.Rationale)
	} else {
		state.Source = SourceLLM
		state.addStep(ActionAnalysis, "intent analysis (%s): general knowledge, %s", res.Method, res.Rationale)
	}
}

// retrieve runs document retrieval for document-dependent questions. When
// no supporting evidence can be found (empty index, zero hits, retrieval
// unavailable), the request is downgraded to general mode so synthesis
// does not fabricate grounded-sounding content.
func (p *Pipeline) retrieve(ctx context.Context, state *RequestState) {
	if state.Intent != intent.DocDependent {
		state.addStep(ActionRAG, "retrieval skipped: question classified as general knowledge")
		return
	}

	if p.retriever == nil {
		p.downgrade(state, "retrieval unavailable: no document index configured")
		return
	}

	count := p.retriever.Count()
	if count == 0 {
		p.downgrade(state, "retrieval found nothing: the document index is empty")
		return
	}

	hits := p.retriever.Search(ctx, state.Input, p.cfg.RetrievalLimit)
	if len(hits) == 0 {
		p.downgrade(state, "retrieval found nothing relevant among %d indexed chunks", count)
		return
	}

	state.RAGResult = hits
	titles := make([]string, 0, 3)
	for _, h := range hits[:min(3, len(hits))] {
		titles = append(titles, h.DocumentTitle)
	}
	state.addStep(ActionRAG, "retrieval: %d hits (e.g. %s)", len(hits), strings.Join(titles, ", "))
}

// downgrade reroutes a document-dependent request to general mode and
// records why.
func (p *Pipeline) downgrade(state *RequestState, format string, args ...any) {
	state.Intent = intent.General
	state.Source = SourceLLM
	state.addStep(ActionRAG, format+"; answering from general knowledge instead", args...)
}

// webSearch runs the external search stage when the question asks for live
// information. Provider failures are absorbed.
func (p *Pipeline) webSearch(ctx context.Context, state *RequestState) {
	trigger := matchTrigger(state.Input)
	if trigger == "" {
		state.addStep(ActionWebSearch, "web search skipped: no live-information terms in the question")
		return
	}

	hits, err := p.searcher.Search(ctx, state.Input, p.cfg.WebMaxResults)
	if err != nil {
		p.logger.Warn("web search failed", "error", err)
		state.addStep(ActionWebSearch, "web search triggered by %q but failed: %v", trigger, err)
		return
	}
	if len(hits) == 0 {
		state.addStep(ActionWebSearch, "web search triggered by %q returned no results", trigger)
		return
	}

	state.WebResult = hits
	state.addStep(ActionWebSearch, "web search triggered by %q: %d results", trigger, len(hits))
}

func matchTrigger(input string) string {
	lowered := strings.ToLower(input)
	for _, t := range webTriggers {
		if strings.Contains(lowered, t) {
			return t
		}
	}
	return ""
}

// synthesize builds the final prompt and invokes the model once. A model
// failure degrades to an apology answer; this stage never raises.
func (p *Pipeline) synthesize(ctx context.Context, state *RequestState, profile string) {
	messages := buildMessages(state, profile, p.cfg.HistoryTurns)

	answer, err := p.completer.Chat(ctx, messages)
	if err != nil {
		p.logger.Warn("answer synthesis failed", "error", err)
		state.Output = "申し訳ございません。回答の生成中にエラーが発生しました: " + err.Error()
		state.addStep(ActionAnswer, "synthesis failed (%v); returned an apology to the user", err)
		return
	}

	state.Output = answer
	state.References = buildReferences(state)
	state.addStep(ActionAnswer, "answer generated using %s", describeSources(state))
}

func describeSources(state *RequestState) string {
	var parts []string
	if len(state.RAGResult) > 0 {
		parts = append(parts, "indexed documents")
	}
	if len(state.WebResult) > 0 {
		parts = append(parts, "web search results")
	}
	if len(parts) == 0 {
		return "general knowledge only"
	}
	return strings.Join(parts, " and ")
}

// buildReferences collects the sources actually offered to the model.
func buildReferences(state *RequestState) []Reference {
	var refs []Reference
	for _, r := range state.RAGResult[:min(promptRAGHits, len(state.RAGResult))] {
		refs = append(refs, Reference{
			Title:   r.DocumentTitle,
			Snippet: truncate(r.Snippet, 200),
		})
	}
	for _, h := range state.WebResult[:min(promptWebHits, len(state.WebResult))] {
		refs = append(refs, Reference{
			Title:   h.Title,
			URL:     h.URL,
			Snippet: truncate(h.Content, 200),
		})
	}
	return refs
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
