package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"corpus/internal/adapter/source"
	"corpus/internal/adapter/store"
	"corpus/internal/domain"
)

var (
	importFormat   string
	importSpeeches bool
	importAtom     bool
	importLimit    int
	exportFormat   string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add the documents of a tabular or snapshot file to the corpus",
	Long: `Import documents from a file written by 'corpus export' or by other tools.
Imported documents are appended and receive new identifiers.

The format is taken from --format or from the file extension
(.tsv, .csv, .json, .db, .sqlite). With --speeches the file is read as a
speech dataset (speaker, text, descr, link, date) and every sentence becomes a
document. With --atom the file is an arXiv API response (an Atom feed) and
every entry becomes a preprint.

Examples:
  corpus import corpus.csv
  corpus import discours.tsv --speeches --limit 100
  corpus import arxiv.xml --atom`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the corpus to a file in another format",
	Long: `Export every document, identifiers included, to FILE.

Examples:
  corpus export corpus.tsv
  corpus export snapshot.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	importCmd.Flags().StringVar(&importFormat, "format", "", "file format (default from extension)")
	importCmd.Flags().BoolVar(&importSpeeches, "speeches", false, "read a speech dataset")
	importCmd.Flags().BoolVar(&importAtom, "atom", false, "read an arXiv Atom feed")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "maximum number of speeches (0 reads all)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "file format (default from extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	var docs []domain.Document
	var err error
	switch {
	case importSpeeches && importAtom:
		return fmt.Errorf("--speeches and --atom cannot be combined")
	case importSpeeches:
		docs, err = source.LoadSpeechesFile(path, source.SpeechOptions{Limit: importLimit, Now: time.Now().UTC()})
	case importAtom:
		docs, err = source.LoadAtomFile(path, time.Now().UTC())
	default:
		docs, err = readCorpusFile(path, importFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	bar := newProgressBar(len(docs), "Importing")
	result, err := sess.ingest().AddAll(docs)
	if err != nil {
		return err
	}
	bar.Set(result.Added)

	fmt.Printf("Imported %d documents from %s (corpus size %d)\n", result.Added, path, result.Total)
	printWarnings(result.Warnings)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := resolveFormat(path, exportFormat)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	target, err := store.Open(format, path)
	if err != nil {
		return err
	}
	defer target.Close()

	if err := target.Save(sess.docs.Documents()); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	fmt.Printf("Exported %d documents to %s (%s)\n", sess.docs.Len(), path, format)
	return nil
}

func readCorpusFile(path, format string) ([]domain.Document, error) {
	format, err := resolveFormat(path, format)
	if err != nil {
		return nil, err
	}
	src, err := store.Open(format, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Load()
}

func resolveFormat(path, format string) (string, error) {
	if format != "" {
		return format, nil
	}
	return store.FormatFromPath(path)
}
