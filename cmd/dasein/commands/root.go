package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataDir         string
	dbURL           string
	bucket          string
	credentialsFile string
	mediaDir        string
	verbose         bool
	jsonOutput      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dasein",
	Short: "Dasein - live social posting client",
	Long: `Dasein is a social posting client backed by a live document store.
Posts, comments, and profiles stay in sync through subscriptions; mutations
are atomic batches with their counter adjustments.

Features:
  - Feed with free-text search and tag filtering
  - Threaded comments with per-post counters
  - Saved-posts list with batched resolution
  - Image attachments via blob storage
  - Embedded store by default, PostgreSQL with --db
  - Interactive TUI feed browser`,
	Version: "0.7.1",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default $HOME/.dasein)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection URL (embedded store when unset)")
	rootCmd.PersistentFlags().StringVar(&bucket, "bucket", "", "GCS bucket for image storage (local media dir when unset)")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials", "", "Path to GCS service account credentials")
	rootCmd.PersistentFlags().StringVar(&mediaDir, "media-dir", "", "Directory for local image storage (default <data-dir>/media)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}
