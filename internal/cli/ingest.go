package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"corpus/internal/adapter/fs"
	"corpus/internal/adapter/source"
	"corpus/internal/port"
)

var ingestSplit bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Add text and HTML files to the corpus",
	Long: `Walk the specified directory and add every matching file to the corpus.
Text files become one document titled after their first line; HTML files are
reduced to their visible text, with title and author taken from the page.

Examples:
  corpus ingest .                 # Ingest current directory
  corpus ingest ./speeches --split # One document per sentence`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestSplit, "split", false, "split files into one document per sentence")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	cfg := GetConfig()
	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)

	fmt.Printf("Scanning %s...\n", path)
	files, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	bar := newProgressBar(len(files), "Reading")
	var barMu sync.Mutex
	startTime := time.Now()
	processed := 0

	progress := func(port.FileInfo) {
		barMu.Lock()
		defer barMu.Unlock()
		processed++
		bar.Set(processed)

		elapsed := time.Since(startTime)
		rate := float64(processed) / elapsed.Seconds()
		if remaining := len(files) - processed; rate > 0 && remaining > 0 {
			eta := time.Duration(float64(remaining)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Reading[reset] ETA: %s", formatDuration(eta)))
		}
	}

	loader := source.NewFileLoader(walker, fs.Reader{MaxBytes: cfg.Ingest.MaxFileBytes},
		source.WithWorkers(cfg.Ingest.Workers),
		source.WithDefaultAuthor(cfg.Ingest.DefaultAuthor),
		source.WithSentenceSplitting(cfg.Ingest.SplitSentences || ingestSplit),
		source.WithProgress(progress),
		source.WithLogger(component("loader")),
	)

	result, err := sess.ingest().Ingest(cmd.Context(), loader, path)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files read:      %d\n", len(files))
	fmt.Printf("  Documents added: %d\n", result.Added)
	if result.Added > 0 {
		fmt.Printf("  Identifiers:     %d-%d\n", result.FirstID, result.LastID)
	}
	fmt.Printf("  Corpus size:     %d\n", result.Total)
	printWarnings(result.Warnings)

	fmt.Printf("\nCorpus stored at: %s\n", sess.location)
	return nil
}

func newProgressBar(total int, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", label)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Printf("\nWarnings:\n")
	for _, w := range warnings {
		fmt.Printf("  - %s\n", w)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
