package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"corpus/config"
	"corpus/internal/usecase"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the corpus to MCP clients over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the tools
search_documents, concordance and corpus_stats.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	engine := sess.engine(nil)
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "corpus",
		Version: "1.0.0",
	}, &mcp.ServerOptions{
		Instructions: "This server searches a document corpus with TF-IDF ranking and explores it with concordances and word statistics.",
	})

	addSearchDocumentsTool(server, usecase.NewRetrieveUseCase(engine, sess.docs), sess.cfg)
	addConcordanceTool(server, usecase.NewExplorer(sess.docs), sess.cfg)
	addCorpusStatsTool(server, usecase.NewExplorer(sess.docs), sess.cfg)

	component("mcp").WithField("documents", sess.docs.Len()).Info("MCP server listening on stdio")
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func textResult(v interface{}) (*mcp.CallToolResult, any, error) {
	resultJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(resultJSON)},
		},
	}, nil, nil
}

type searchDocumentsArgs struct {
	Query    string `json:"query" jsonschema:"Free-text query"`
	TopN     int    `json:"top_n,omitempty" jsonschema:"Maximum number of documents to return"`
	UseTFIDF *bool  `json:"use_tfidf,omitempty" jsonschema:"Weight terms by inverse document frequency (default true)"`
}

func addSearchDocumentsTool(server *mcp.Server, retrieve *usecase.RetrieveUseCase, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Rank corpus documents by cosine similarity to a query",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args searchDocumentsArgs) (*mcp.CallToolResult, any, error) {
		if args.Query == "" {
			return nil, nil, fmt.Errorf("query is required")
		}
		topN := orDefault(args.TopN, cfg.Retrieve.TopN)
		useTFIDF := cfg.Retrieve.UseTFIDF
		if args.UseTFIDF != nil {
			useTFIDF = *args.UseTFIDF
		}

		results, err := retrieve.Retrieve(args.Query, topN, useTFIDF)
		if err != nil {
			return nil, nil, err
		}
		return textResult(map[string]interface{}{
			"query":   args.Query,
			"results": results,
			"count":   len(results),
		})
	})
}

type concordanceArgs struct {
	Pattern string `json:"pattern" jsonschema:"Regular expression, matched case-insensitively"`
	Context int    `json:"context,omitempty" jsonschema:"Characters of context on each side"`
}

func addConcordanceTool(server *mcp.Server, explorer *usecase.Explorer, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "concordance",
		Description: "List every match of a pattern in the corpus with its left and right context",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args concordanceArgs) (*mcp.CallToolResult, any, error) {
		lines, err := explorer.Concordance(args.Pattern, orDefault(args.Context, cfg.Explore.ConcordanceContext))
		if err != nil {
			return nil, nil, err
		}
		return textResult(map[string]interface{}{
			"pattern": args.Pattern,
			"lines":   lines,
			"count":   len(lines),
		})
	})
}

type corpusStatsArgs struct {
	Top int `json:"top,omitempty" jsonschema:"Number of most frequent words to return"`
}

func addCorpusStatsTool(server *mcp.Server, explorer *usecase.Explorer, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "corpus_stats",
		Description: "Document count, vocabulary size and most frequent words of the corpus",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args corpusStatsArgs) (*mcp.CallToolResult, any, error) {
		return textResult(explorer.Stats(orDefault(args.Top, cfg.Explore.StatsTop)))
	})
}
