package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"corpus/internal/usecase"
)

var (
	queryText    string
	queryTopN    int
	queryJSON    bool
	queryNoTFIDF bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Rank documents by similarity to a query",
	Long: `Rank the documents of the corpus by cosine similarity between the query
and each document, using TF-IDF weights unless --no-tfidf is given.

Examples:
  corpus query -q "foreign policy"
  corpus query -q "energy" -k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopN, "top-n", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryNoTFIDF, "no-tfidf", false, "rank with raw term frequencies")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	topN := cfg.Retrieve.TopN
	if queryTopN > 0 {
		topN = queryTopN
	}
	useTFIDF := cfg.Retrieve.UseTFIDF && !queryNoTFIDF

	engine := sess.engine(nil)
	retrieveUC := usecase.NewRetrieveUseCase(engine, sess.docs)
	results, err := retrieveUC.Retrieve(queryText, topN, useTFIDF)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for _, r := range results {
		fmt.Printf("--- [%d] #%d %s (%s, %s) score: %.4f ---\n",
			r.Rank, r.ID, r.Title, r.Author, r.Date.Format("2006-01-02"), r.Score)
		if r.URL != "" {
			fmt.Println(r.URL)
		}
		fmt.Println(r.Preview)
		fmt.Println()
	}
	return nil
}
