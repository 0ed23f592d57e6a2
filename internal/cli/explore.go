package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"corpus/internal/domain"
	"corpus/internal/usecase"
)

var (
	grepContext   int
	concordWidth  int
	statsTop      int
	compareTop    int
	trendPeriod   string
	exploreAsJSON bool
)

var grepCmd = &cobra.Command{
	Use:   "grep KEYWORD",
	Short: "Show passages containing a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrep,
}

var concordCmd = &cobra.Command{
	Use:   "concord PATTERN",
	Short: "Concordance of a regular expression",
	Long: `Print every match of PATTERN with its left and right context.
Matching ignores case.

Examples:
  corpus concord "nation"
  corpus concord "democra\w+" --context 40`,
	Args: cobra.ExactArgs(1),
	RunE: runConcord,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Vocabulary size and most frequent words",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var compareCmd = &cobra.Command{
	Use:   "compare KIND_A KIND_B",
	Short: "Compare the vocabulary of two document kinds",
	Long: `Compare relative word frequencies between two kinds of documents
(generic, forum-post or preprint; reddit and arxiv are accepted as aliases).
Words over-represented in KIND_A come first.

Example:
  corpus compare reddit arxiv -n 15`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var trendCmd = &cobra.Command{
	Use:   "trend TERM",
	Short: "Relative frequency of a word over time",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func init() {
	for _, c := range []*cobra.Command{grepCmd, concordCmd, statsCmd, compareCmd, trendCmd} {
		rootCmd.AddCommand(c)
		c.Flags().BoolVar(&exploreAsJSON, "json", false, "output as JSON")
	}
	grepCmd.Flags().IntVar(&grepContext, "context", 0, "characters of context (default from config)")
	concordCmd.Flags().IntVar(&concordWidth, "context", 0, "characters of context (default from config)")
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 0, "number of words (default from config)")
	compareCmd.Flags().IntVarP(&compareTop, "top", "n", 0, "number of words (default from config)")
	trendCmd.Flags().StringVar(&trendPeriod, "period", "month", "bucket size: day, month or year")
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func printJSON(v interface{}) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}

func runGrep(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	passages := usecase.NewExplorer(sess.docs).Grep(args[0], orDefault(grepContext, sess.cfg.Explore.SnippetContext))
	if exploreAsJSON {
		printJSON(passages)
		return nil
	}
	if len(passages) == 0 {
		fmt.Printf("No passage contains %q.\n", args[0])
		return nil
	}
	for _, p := range passages {
		fmt.Printf("...%s...\n", p)
	}
	return nil
}

func runConcord(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	width := orDefault(concordWidth, sess.cfg.Explore.ConcordanceContext)
	lines, err := usecase.NewExplorer(sess.docs).Concordance(args[0], width)
	if err != nil {
		return err
	}
	if exploreAsJSON {
		printJSON(lines)
		return nil
	}
	fmt.Printf("%d matches\n", len(lines))
	for _, l := range lines {
		fmt.Printf("%*s  %s  %s\n", width, l.Left, l.Match, l.Right)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	stats := usecase.NewExplorer(sess.docs).Stats(orDefault(statsTop, sess.cfg.Explore.StatsTop))
	if exploreAsJSON {
		printJSON(stats)
		return nil
	}
	fmt.Printf("Documents:       %d\n", stats.Documents)
	fmt.Printf("Distinct words:  %d\n\n", stats.VocabularySize)
	fmt.Printf("%-24s %8s %8s\n", "word", "tf", "df")
	for _, t := range stats.Terms {
		fmt.Printf("%-24s %8d %8d\n", t.Word, t.TF, t.DF)
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := domain.ParseKind(args[0])
	if err != nil {
		return err
	}
	b, err := domain.ParseKind(args[1])
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	rows := usecase.NewExplorer(sess.docs).CompareKinds(a, b, orDefault(compareTop, sess.cfg.Explore.StatsTop))
	if exploreAsJSON {
		printJSON(rows)
		return nil
	}
	fmt.Printf("%-24s %8s %8s %10s %10s %10s\n", "word", "tf_"+string(a), "tf_"+string(b), "rel_a", "rel_b", "diff")
	for _, r := range rows {
		fmt.Printf("%-24s %8d %8d %10.5f %10.5f %+10.5f\n", r.Word, r.TFA, r.TFB, r.RelA, r.RelB, r.Diff)
	}
	return nil
}

func runTrend(cmd *cobra.Command, args []string) error {
	period, err := usecase.ParsePeriod(trendPeriod)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	points := usecase.NewExplorer(sess.docs).TemporalTrend(args[0], period)
	if exploreAsJSON {
		printJSON(points)
		return nil
	}
	layout := map[usecase.Period]string{
		usecase.PeriodDay:   "2006-01-02",
		usecase.PeriodMonth: "2006-01",
		usecase.PeriodYear:  "2006",
	}[period]
	for _, p := range points {
		fmt.Printf("%-10s %6d / %-8d %.5f\n", p.Period.Format(layout), p.Hits, p.Total, p.RelFreq)
	}
	return nil
}
