package llm

import (
	"context"

	"github.com/deepblue-labs/datachat/internal/progress"
)

// Provider is the opaque agent capability: given an instruction and the
// user's request, it reasons over the dataset context embedded in the
// instruction and returns free-form text. The core never inspects how.
type Provider interface {
	Analyze(ctx context.Context, system, user string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64

	// Observer receives streaming progress events. When set, the provider
	// streams and forwards token deltas; when nil the call is a single
	// blocking completion.
	Observer progress.Observer
}

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

func WithObserver(obs progress.Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

// Response is the raw provider output handed to the parser.
type Response struct {
	Content string
	Usage   Usage
}
