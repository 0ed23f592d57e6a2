package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"corpus/internal/domain"
)

var (
	listSort  string
	listLimit int
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Long: `List the documents of the corpus ordered by identifier, date or title.

Examples:
  corpus list --sort date -n 10
  corpus list --sort title --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List authors with their document count and mean text length",
	Args:  cobra.NoArgs,
	RunE:  runAuthors,
}

var setCommentsCmd = &cobra.Command{
	Use:   "set-comments ID N",
	Short: "Set the comment count of a forum post",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetComments,
}

var setCoAuthorsCmd = &cobra.Command{
	Use:   "set-coauthors ID NAME...",
	Short: "Replace the co-authors of a preprint",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSetCoAuthors,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(authorsCmd)
	rootCmd.AddCommand(setCommentsCmd)
	rootCmd.AddCommand(setCoAuthorsCmd)
	listCmd.Flags().StringVar(&listSort, "sort", "id", "ordering: id, date or title")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of documents (0 lists all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var docs []domain.Document
	switch strings.ToLower(listSort) {
	case "id":
		docs = sess.docs.Documents()
	case "date":
		docs = sess.docs.ByDate()
	case "title":
		docs = sess.docs.ByTitle()
	default:
		return fmt.Errorf("unknown sort order %q (want id, date or title)", listSort)
	}
	if listLimit > 0 && listLimit < len(docs) {
		docs = docs[:listLimit]
	}

	if listJSON {
		type row struct {
			ID     int         `json:"id"`
			Kind   domain.Kind `json:"type"`
			Title  string      `json:"title"`
			Author string      `json:"author"`
			Date   string      `json:"date"`
		}
		rows := make([]row, len(docs))
		for i, d := range docs {
			rows[i] = row{ID: d.ID, Kind: d.Kind(), Title: d.Title, Author: d.Author, Date: d.Date.Format("2006-01-02")}
		}
		output, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(docs) == 0 {
		fmt.Println("The corpus is empty.")
		return nil
	}
	for _, d := range docs {
		fmt.Println(d.String())
	}
	return nil
}

func runAuthors(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	authors := sess.docs.Authors()
	if len(authors) == 0 {
		fmt.Println("No authors.")
		return nil
	}
	fmt.Printf("%d authors\n\n", len(authors))
	for _, a := range authors {
		fmt.Printf("%-30s %5d documents  %8.1f chars on average\n", a.Name, a.DocCount(), a.AverageLength())
	}
	return nil
}

func runSetComments(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid comment count %q", args[1])
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.docs.SetCommentCount(id, n); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}
	fmt.Printf("Document %d now has %d comments\n", id, n)
	return nil
}

func runSetCoAuthors(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.docs.SetCoAuthors(id, args[1:]); err != nil {
		return err
	}
	if err := sess.save(); err != nil {
		return err
	}
	fmt.Printf("Document %d co-authors: %s\n", id, strings.Join(args[1:], ", "))
	return nil
}
