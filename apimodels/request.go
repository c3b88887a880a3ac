package apimodels

type AnalysisRequest struct {
	// Query is the natural language question about the dataset
	Query string `json:"query"`

	// Dataset carries the table inline; alternatively DatasetName refers
	// to a table preloaded on the server
	Dataset     *TablePayload `json:"dataset,omitempty"`
	DatasetName string        `json:"datasetName,omitempty"`

	// Optional parameters to control analysis behavior
	Options AnalysisOptions `json:"options,omitempty"`
}

// TablePayload is the wire form of a tabular dataset: a header plus
// row-major cells. Column types are inferred server-side.
type TablePayload struct {
	Name    string  `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type AnalysisOptions struct {
	// NoCache disables the analysis cache for this request
	NoCache bool `json:"noCache,omitempty"`

	// ChartHint nudges the agent toward a chart type ("bar", "pie", ...)
	ChartHint string `json:"chartHint,omitempty"`

	// Style selects the rendering palette (default, minimal, professional,
	// colorful)
	Style string `json:"style,omitempty"`

	// Model specifies which LLM model to use (e.g. "gpt-4o-mini")
	Model string `json:"model,omitempty"`

	// MaxTokens limits the LLM response length
	MaxTokens int64 `json:"maxTokens,omitempty"`

	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `json:"temperature,omitempty"`
}
