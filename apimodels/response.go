package apimodels

import "encoding/json"

type AnalysisResponse struct {
	// Kind tags which result variant was produced
	Kind string `json:"kind"`

	// Result is the envelope in its canonical wire shape, keyed by kind
	Result json.RawMessage `json:"result"`

	// Chart is the normalized chart structure when the result is a chart
	// that could be repaired into a renderable shape
	Chart *ChartPayload `json:"chart,omitempty"`

	// ChartError describes why a chart result could not be normalized;
	// the envelope itself is still valid
	ChartError string `json:"chartError,omitempty"`

	// Metadata about the analysis
	Metadata AnalysisMetadata `json:"metadata"`
}

// ChartPayload is the canonical chart structure ready for rendering.
type ChartPayload struct {
	Type       string      `json:"type"`
	Categories []string    `json:"categories,omitempty"`
	Values     []float64   `json:"values,omitempty"`
	X          []float64   `json:"x,omitempty"`
	Y          []float64   `json:"y,omitempty"`
	Labels     []string    `json:"labels,omitempty"`
	Matrix     [][]float64 `json:"matrix,omitempty"`
	XLabels    []string    `json:"xLabels,omitempty"`
	YLabels    []string    `json:"yLabels,omitempty"`

	// Rendering hints resolved from the requested style
	Palette  []string `json:"palette,omitempty"`
	Colormap string   `json:"colormap,omitempty"`
}

type AnalysisMetadata struct {
	// Analysis identifier for log correlation
	ID string `json:"id"`

	// Time taken for analysis
	Duration string `json:"duration"`

	// Model used for analysis
	Model string `json:"model,omitempty"`

	// Tokens used in analysis
	TokensUsed int64 `json:"tokensUsed"`

	// Whether the result was served from cache
	Cached bool `json:"cached"`
}

// CacheInfo describes the cache surface exposed operationally.
type CacheInfo struct {
	TTLSeconds int `json:"ttlSeconds"`
}
