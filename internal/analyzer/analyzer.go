// Package analyzer orchestrates one analysis: it composes the protocol
// preamble with the dataset context and the user query, invokes the agent
// capability, parses the raw output into a result envelope, and memoizes
// non-streaming results. Its output is always a valid envelope; capability
// failures degrade to an apologetic answer instead of propagating.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/deepblue-labs/datachat/internal/cache"
	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/envelope"
	"github.com/deepblue-labs/datachat/internal/llm"
	"github.com/deepblue-labs/datachat/internal/progress"
)

// previewRows bounds how many data rows are embedded in the instruction.
const previewRows = 50

type Analyzer struct {
	provider llm.Provider
	store    cache.Store
}

func New(provider llm.Provider, store cache.Store) *Analyzer {
	return &Analyzer{provider: provider, store: store}
}

// Options control one analysis call.
type Options struct {
	// Stream delivers progress events to Observer and bypasses the cache
	// entirely: streamed calls are never served from or written to it.
	Stream   bool
	Observer progress.Observer

	// NoCache disables cache reads and writes for this call.
	NoCache bool

	// ChartHint nudges the agent toward a chart type ("bar", "pie", ...).
	ChartHint string

	Model       string
	MaxTokens   int64
	Temperature float64
}

// Metadata describes how a result was produced.
type Metadata struct {
	ID         string `json:"id"`
	Duration   string `json:"duration"`
	Model      string `json:"model"`
	TokensUsed int64  `json:"tokensUsed"`
	Cached     bool   `json:"cached"`
}

// Result pairs the envelope with its metadata.
type Result struct {
	Envelope *envelope.Envelope
	Metadata Metadata
}

// Analyze runs the full pipeline for one query. It never fails: malformed
// agent output becomes a Fallback envelope and capability errors become a
// fixed apologetic answer with the cause logged.
func (a *Analyzer) Analyze(ctx context.Context, table *dataset.Table, query string, opts Options) *Result {
	slog.Info("Starting analysis", "dataset", table.Name(), "query", query)
	startTime := time.Now()
	id := uuid.NewString()

	obs := opts.Observer
	if obs == nil {
		obs = progress.Nop
	}

	effectiveQuery := query
	if opts.ChartHint != "" {
		effectiveQuery = fmt.Sprintf("%s\nPresent the result as a %s chart.", query, opts.ChartHint)
	}

	cacheable := !opts.Stream && !opts.NoCache
	var key string
	if cacheable {
		key = cache.Key(table, effectiveQuery)
		if cached, ok := a.store.Get(key); ok {
			slog.Debug("serving analysis from cache", "key", key)
			return &Result{
				Envelope: cached,
				Metadata: a.metadata(id, startTime, opts.Model, 0, true),
			}
		}
	}

	if opts.Stream {
		obs.Handle(progress.Event{
			Kind:    progress.AgentAction,
			Tool:    "analyze",
			Step:    1,
			Message: "analyzing your data",
		})
	}

	llmOpts := []llm.Option{
		llm.WithModel(opts.Model),
		llm.WithMaxTokens(opts.MaxTokens),
		llm.WithTemperature(opts.Temperature),
	}
	if opts.Stream {
		llmOpts = append(llmOpts, llm.WithObserver(obs))
	}

	llmResp, err := a.provider.Analyze(ctx, SystemPrompt, a.composeUserMessage(table, effectiveQuery), llmOpts...)
	if err != nil {
		// Fail soft: the cause stays in the log, the caller gets a valid
		// envelope with a generic answer.
		slog.Error("agent capability failed", "error", err, "dataset", table.Name())
		obs.Handle(progress.Event{Kind: progress.Error, Message: capabilityFailureAnswer})
		return &Result{
			Envelope: envelope.NewAnswer(capabilityFailureAnswer),
			Metadata: a.metadata(id, startTime, opts.Model, 0, false),
		}
	}

	env := envelope.Parse(llmResp.Content)
	if env.Kind == envelope.KindFallback {
		slog.Warn("agent output did not parse, returning raw text", "dataset", table.Name())
	}
	obs.Handle(progress.Event{Kind: progress.Completed, Message: "analysis complete"})

	if cacheable {
		a.store.Put(key, env)
	}

	return &Result{
		Envelope: env,
		Metadata: a.metadata(id, startTime, opts.Model, llmResp.Usage.TotalTokens, false),
	}
}

// InvalidateCache clears every memoized result. Exposed for the "clear
// cache" operation and for callers that disable caching globally.
func (a *Analyzer) InvalidateCache() error {
	return a.store.InvalidateAll()
}

func (a *Analyzer) composeUserMessage(table *dataset.Table, query string) string {
	return fmt.Sprintf("%s\nThe current user request is:\n%s", table.PromptContext(previewRows), query)
}

func (a *Analyzer) metadata(id string, startTime time.Time, model string, tokens int64, cached bool) Metadata {
	return Metadata{
		ID:         id,
		Duration:   time.Since(startTime).String(),
		Model:      model,
		TokensUsed: tokens,
		Cached:     cached,
	}
}
