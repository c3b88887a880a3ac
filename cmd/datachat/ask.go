package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepblue-labs/datachat/internal/analyzer"
	"github.com/deepblue-labs/datachat/internal/cache"
	"github.com/deepblue-labs/datachat/internal/chart"
	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/llm"
	"github.com/deepblue-labs/datachat/internal/progress"
	"github.com/deepblue-labs/datachat/internal/render"
)

var (
	askStream    bool
	askNoCache   bool
	askStyle     string
	askChartHint string
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question>",
	Short: "Ask a question about a data file",
	Args:  cobra.ExactArgs(2),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream intermediate progress to stderr")
	askCmd.Flags().BoolVar(&askNoCache, "no-cache", false, "bypass the analysis cache")
	askCmd.Flags().StringVar(&askStyle, "style", "", "chart style: default, minimal, professional, colorful")
	askCmd.Flags().StringVar(&askChartHint, "chart", "", "preferred chart type: bar, line, scatter, pie, heatmap")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the raw result envelope as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	path, query := args[0], args[1]

	cfg := loadCLIConfig()
	if cfg.APIKey == "" {
		return errors.New("no API key: set OPENAI_API_KEY or api_key in ~/.datachat.yaml")
	}

	table, err := dataset.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	dbPath, err := cachePath()
	if err != nil {
		return err
	}
	store, err := cache.NewSQLite(dbPath, cache.DefaultTTL)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := llm.NewOpenAI(cfg.openAIConfig())
	if err != nil {
		return err
	}

	opts := analyzer.Options{
		NoCache:   askNoCache,
		ChartHint: askChartHint,
	}
	if askStream {
		opts.Stream = true
		opts.Observer = progress.NewReporter(cmd.ErrOrStderr())
	}

	result := analyzer.New(provider, store).Analyze(cmd.Context(), table, query, opts)

	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Envelope)
	}

	style := chart.ParseStyle(firstNonEmpty(askStyle, cfg.Style))
	if err := render.Render(cmd.OutOrStdout(), result.Envelope, style); err != nil {
		fmt.Fprintf(os.Stderr, "could not render chart: %v\n", err)
	}
	if result.Metadata.Cached {
		fmt.Fprintln(cmd.ErrOrStderr(), "(cached result)")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
