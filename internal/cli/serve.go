package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"corpus/internal/metrics"
	"corpus/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Serve the corpus over HTTP:

  GET /api/v1/search?q=&limit=&tfidf=
  GET /api/v1/concordance?pattern=&context=
  GET /api/v1/stats?top=
  GET /api/v1/compare?a=&b=&top=
  GET /api/v1/trend?term=&period=
  GET /api/v1/documents/{id}
  GET /api/v1/authors
  GET /healthz
  GET /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := sess.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	m := metrics.New()
	srv := server.NewServer(sess.engine(m), m, *sess.cfg, component("api"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx, addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
