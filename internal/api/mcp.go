package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/askdocs/askdocs/internal/retrieval"
)

// MCPSearcher abstracts fail-open document search for the MCP layer.
type MCPSearcher interface {
	Search(ctx context.Context, query string, limit int) []retrieval.SearchResult
}

// MCPDeps holds dependencies for the MCP server. Pipeline and Searcher
// may be nil when the service runs degraded; the affected tools then
// report an error result instead of failing the protocol.
type MCPDeps struct {
	Pipeline MCPAsker
	Registry DocumentRegistry
	Searcher MCPSearcher
}

// MCPAsker mirrors the pipeline surface the ask tool needs.
type MCPAsker = Asker

// NewMCPServer creates an MCP server exposing document registration,
// semantic search, and the full question-answering pipeline as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"askdocs",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("askdocs answers questions grounded in the user's registered documents."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("register_document",
			mcp.WithDescription("Register a text document so later questions can be answered from it."),
			mcp.WithString("title", mcp.Description("Title for the document")),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
		),
		mcpRegisterDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("search_documents",
			mcp.WithDescription("Semantically search the registered documents and return matching chunks."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchDocuments(deps),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Answer a question, consulting the registered documents when relevant."),
			mcp.WithString("input", mcp.Description("The question"), mcp.Required()),
			mcp.WithString("profile", mcp.Description("Optional answer profile: default, legal, or summary")),
		),
		mcpAsk(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"askdocs://documents",
			"Registered Documents",
			mcp.WithResourceDescription("All registered documents with their chunk counts"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceDocuments(deps),
	)

	return s
}

func mcpRegisterDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		title := req.GetString("title", "")

		docID, chunkCount, err := deps.Registry.Register(ctx, title, content)
		if err != nil {
			return mcpError(fmt.Sprintf("registration failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Registered document %s (%d chunks)", docID, chunkCount)), nil
	}
}

func mcpSearchDocuments(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Searcher == nil {
			return mcpError("search not available: no document index configured"), nil
		}

		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			limit = 50
		}

		results := deps.Searcher.Search(ctx, query, limit)
		if len(results) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAsk(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Pipeline == nil {
			return mcpError("ask not available: no language model configured"), nil
		}

		input, err := req.RequireString("input")
		if err != nil {
			return mcpError("input is required"), nil
		}
		profile := req.GetString("profile", "")

		state := deps.Pipeline.Run(ctx, input, nil, profile)

		b, err := json.Marshal(AskResponse{
			Output:     state.Output,
			Steps:      state.Steps,
			References: state.References,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal answer: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceDocuments(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		docs, err := deps.Registry.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		b, err := json.Marshal(docs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal documents: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
