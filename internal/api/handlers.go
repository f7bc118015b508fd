// Package api exposes the HTTP surface: the question-answering endpoint,
// document management, and health. It also hosts the MCP server adapter.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/askdocs/askdocs/internal/agent"
	"github.com/askdocs/askdocs/internal/docparse"
	"github.com/askdocs/askdocs/internal/index"
	"github.com/askdocs/askdocs/internal/registry"
)

const maxRequestBodySize = 1 << 20  // 1MB
const maxUploadBodySize = 10 << 20  // 10MB
const maxURLFetchSize = 5 << 20     // 5MB
const urlFetchTimeout = 10 * time.Second

// Asker runs one question through the pipeline.
type Asker interface {
	Run(ctx context.Context, input string, history []agent.Message, profile string) *agent.RequestState
}

// DocumentRegistry is the document lifecycle surface the handlers need.
type DocumentRegistry interface {
	Register(ctx context.Context, title, content string) (string, int, error)
	List() ([]index.DocumentSummary, error)
	Delete(documentID string) (int, error)
}

// Deps holds handler dependencies. Token is optional; when empty the API
// is open, which is the expected mode for local single-user use.
type Deps struct {
	Pipeline   Asker
	Registry   DocumentRegistry
	Token      string
	HTTPClient *http.Client
}

// NewHandler returns the root http.Handler: /health unauthenticated,
// everything under /api behind bearer auth when a token is configured.
func NewHandler(deps Deps) http.Handler {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: urlFetchTimeout}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}

		r.Post("/agent/ask", handleAsk(deps))
		r.Post("/documents/register", handleRegister(deps))
		r.Post("/documents/upload", handleUpload(deps))
		r.Post("/documents/fetch", handleFetch(deps))
		r.Get("/documents", handleListDocuments(deps))
		r.Delete("/documents/{id}", handleDeleteDocument(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type AskRequest struct {
	Input   string          `json:"input"`
	History []agent.Message `json:"history"`
	Profile string          `json:"profile"`
}

type AskResponse struct {
	Output     string            `json:"output"`
	Steps      []agent.StepLog   `json:"steps"`
	References []agent.Reference `json:"references"`
}

func handleAsk(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Input == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "input is required")
			return
		}

		state := deps.Pipeline.Run(r.Context(), req.Input, req.History, req.Profile)

		writeJSON(w, http.StatusOK, AskResponse{
			Output:     state.Output,
			Steps:      state.Steps,
			References: state.References,
		})
	}
}

type RegisterRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type RegisterResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

func handleRegister(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		registerDocument(w, r, deps, req.Title, req.Content)
	}
}

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required: %v", err)
			return
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading upload: %v", err)
			return
		}

		content, err := docparse.Parse(header.Filename, raw)
		if err != nil {
			if errors.Is(err, docparse.ErrUnsupportedFormat) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "unsupported file format: %s", header.Filename)
				return
			}
			httpError(w, http.StatusBadRequest, "invalid_request_error", "parsing %s: %v", header.Filename, err)
			return
		}

		title := r.FormValue("title")
		if title == "" {
			title = header.Filename
		}

		registerDocument(w, r, deps, title, content)
	}
}

type FetchRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func handleFetch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req FetchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), urlFetchTimeout)
		defer cancel()

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid url: %v", err)
			return
		}
		resp, err := deps.HTTPClient.Do(httpReq)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "failed to fetch url: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpError(w, http.StatusBadGateway, "api_error", "url returned status %d", resp.StatusCode)
			return
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxURLFetchSize))
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "failed to read url response: %v", err)
			return
		}

		content, err := docparse.HTMLToText(raw)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "extracting text from %s: %v", req.URL, err)
			return
		}

		title := req.Title
		if title == "" {
			title = req.URL
		}

		registerDocument(w, r, deps, title, content)
	}
}

// registerDocument is the shared tail of register, upload, and fetch.
func registerDocument(w http.ResponseWriter, r *http.Request, deps Deps, title, content string) {
	docID, chunkCount, err := deps.Registry.Register(r.Context(), title, content)
	if err != nil {
		if errors.Is(err, registry.ErrEmptyDocument) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "document content is empty")
			return
		}
		httpError(w, http.StatusInternalServerError, "api_error", "registering document: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, RegisterResponse{
		DocumentID: docID,
		Title:      title,
		ChunkCount: chunkCount,
	})
}

func handleListDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Registry.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing documents: %v", err)
			return
		}
		if docs == nil {
			docs = []index.DocumentSummary{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
	}
}

func handleDeleteDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		removed, err := deps.Registry.Delete(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deleting document: %v", err)
			return
		}
		if removed == 0 {
			httpError(w, http.StatusNotFound, "not_found_error", "document %s not found", id)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"document_id":    id,
			"chunks_removed": removed,
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
