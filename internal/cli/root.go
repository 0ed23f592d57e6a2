package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"corpus/config"
	"corpus/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Corpus builder and TF-IDF search engine",
	Long: `Corpus builds a document corpus from local files or tabular datasets,
persists it, and explores it with keyword passages, concordances, frequency
statistics and TF-IDF ranked retrieval.

Example usage:
  corpus ingest ./texts                  # Add text and HTML files
  corpus import speeches.tsv --speeches  # Import a speech dataset
  corpus query -q "climate policy"       # Rank documents by similarity
  corpus concord "climat\w*"             # Concordance of a pattern`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}
		rootDir, err = filepath.Abs(rootDir)
		if err != nil {
			return fmt.Errorf("invalid root directory: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./corpus.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func component(name string) *logrus.Entry {
	return logging.Component(logger, name)
}
