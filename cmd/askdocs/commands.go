package main

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/config"
)

type documentSummary struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	ChunkCount    int    `json:"chunk_count"`
}

type askResponse struct {
	Output string `json:"output"`
	Steps  []struct {
		StepID  int    `json:"step_id"`
		Action  string `json:"action"`
		Content string `json:"content"`
	} `json:"steps"`
	References []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"references"`
}

type registerResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question, grounded in your registered documents",
	Long: `Ask a question. Document-related questions are answered from the indexed
documents; everything else falls back to general knowledge.

Examples:
  askdocs ask "What does the NDA say about subcontractors?"
  askdocs ask --profile legal "このNDAの競業避止義務は？"
  askdocs ask --steps "summarize the attached contract"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		profile, _ := cmd.Flags().GetString("profile")
		showSteps, _ := cmd.Flags().GetBool("steps")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)

		resp, err := client.post(cmd.Context(), "/api/agent/ask", map[string]any{
			"input":   question,
			"profile": profile,
		})
		if err != nil {
			return err
		}

		var result askResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if showSteps {
			for _, s := range result.Steps {
				printStep("[%d] %s: %s", s.StepID, s.Action, s.Content)
			}
			fmt.Println()
		}

		fmt.Println(result.Output)

		if len(result.References) > 0 {
			fmt.Println()
			fmt.Println(colorize(colorBold, "References:"))
			for i, r := range result.References {
				line := fmt.Sprintf("  [%d] %s", i+1, r.Title)
				if r.URL != "" {
					line += " <" + r.URL + ">"
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("profile", "", "answer profile: default, legal, or summary")
	askCmd.Flags().Bool("steps", false, "print the pipeline step trace")
}

// --- register ---

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a document for question answering",
	Long: `Register a document so its content can answer later questions.

Examples:
  askdocs register --text "..." --title "Meeting notes"
  askdocs register --file ./nda.pdf
  askdocs register --url https://example.com/terms --title "Terms of service"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		url, _ := cmd.Flags().GetString("url")
		title, _ := cmd.Flags().GetString("title")

		if text == "" && file == "" && url == "" {
			return fmt.Errorf("one of --text, --file, or --url is required")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)

		var resp *http.Response
		switch {
		case text != "":
			if title == "" {
				title = "untitled"
			}
			resp, err = client.post(cmd.Context(), "/api/documents/register", map[string]any{
				"title":   title,
				"content": text,
			})
		case file != "":
			resp, err = uploadFile(cmd.Context(), client, file, title)
		case url != "":
			resp, err = client.post(cmd.Context(), "/api/documents/fetch", map[string]any{
				"url":   url,
				"title": title,
			})
		}
		if err != nil {
			return err
		}

		var result registerResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Registered %s as %s (%d chunks)", result.Title, result.DocumentID, result.ChunkCount)
		return nil
	},
}

func uploadFile(ctx context.Context, client *apiClient, path, title string) (*http.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", client.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if client.token != "" {
		req.Header.Set("Authorization", "Bearer "+client.token)
	}
	return client.httpClient.Do(req)
}

func init() {
	registerCmd.Flags().String("text", "", "inline text content to register")
	registerCmd.Flags().String("file", "", "file path to register (txt, md, json, pdf)")
	registerCmd.Flags().String("url", "", "URL to fetch and register")
	registerCmd.Flags().String("title", "", "title for the document")
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)

		resp, err := client.get(cmd.Context(), "/api/documents")
		if err != nil {
			return err
		}

		var payload struct {
			Documents []documentSummary `json:"documents"`
		}
		if err := decodeJSON(resp, &payload); err != nil {
			return err
		}

		if len(payload.Documents) == 0 {
			fmt.Println("No documents registered.")
			return nil
		}

		for _, d := range payload.Documents {
			title := d.DocumentTitle
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %s  (%d chunks)\n",
				colorize(colorCyan, d.DocumentID),
				title,
				d.ChunkCount,
			)
		}
		return nil
	},
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a registered document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)

		resp, err := client.delete(cmd.Context(), "/api/documents/"+args[0])
		if err != nil {
			return err
		}

		var result struct {
			DocumentID    string `json:"document_id"`
			ChunksRemoved int    `json:"chunks_removed"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted %s (%d chunks removed)", result.DocumentID, result.ChunksRemoved)
		return nil
	},
}
