// Package envelope defines the tagged result union produced by parsing the
// agent's raw output, and the defensive parser that builds it. Parsing never
// fails: anything that is not a well-formed response of a recognized shape
// collapses to the Fallback variant carrying the original text.
package envelope

import (
	"encoding/json"
	"fmt"
)

// Kind tags the populated variant of an Envelope.
type Kind string

const (
	KindAnswer   Kind = "answer"
	KindTable    Kind = "table"
	KindBar      Kind = "bar"
	KindLine     Kind = "line"
	KindScatter  Kind = "scatter"
	KindPie      Kind = "pie"
	KindHeatmap  Kind = "heatmap"
	KindFallback Kind = "fallback"
)

// keyOrder is the fixed precedence for multi-key responses. The response
// protocol declares no precedence, so we pin one: text before table before
// charts, charts in protocol declaration order.
var keyOrder = []Kind{
	KindAnswer, KindTable, KindBar, KindLine, KindScatter, KindPie, KindHeatmap,
}

// Envelope is the tagged union. Exactly one variant is populated, matching
// Kind.
type Envelope struct {
	Kind     Kind
	Answer   *Answer
	Table    *Table
	Bar      *Series
	Line     *Series
	Scatter  *Scatter
	Pie      *Pie
	Heatmap  *Heatmap
	Fallback *Fallback
}

// Answer is a short textual answer.
type Answer struct {
	Text string
}

// Table is a column-ordered result table. Cells are scalars as decoded from
// JSON.
type Table struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Series is the loosely-typed payload shared by bar and line charts. The
// generator emits either columns/data or categories/values; cells may be
// scalars or accidentally wrapped one-element arrays. The chart package
// resolves aliases and repairs wrapping.
type Series struct {
	Categories []any `json:"categories,omitempty"`
	Columns    []any `json:"columns,omitempty"`
	Values     []any `json:"values,omitempty"`
	Data       []any `json:"data,omitempty"`
}

// Scatter is the loose scatter payload (x/y or x_data/y_data).
type Scatter struct {
	X      []any `json:"x,omitempty"`
	XData  []any `json:"x_data,omitempty"`
	Y      []any `json:"y,omitempty"`
	YData  []any `json:"y_data,omitempty"`
	Labels []any `json:"labels,omitempty"`
}

// Pie is the loose pie payload (values or data).
type Pie struct {
	Labels []any `json:"labels,omitempty"`
	Values []any `json:"values,omitempty"`
	Data   []any `json:"data,omitempty"`
}

// Heatmap is the loose heatmap payload (matrix or data). Rows stay untyped
// so the normalizer can repair per-cell wrapping.
type Heatmap struct {
	Matrix  []any `json:"matrix,omitempty"`
	Data    []any `json:"data,omitempty"`
	XLabels []any `json:"x_labels,omitempty"`
	YLabels []any `json:"y_labels,omitempty"`
}

// Fallback carries raw text that could not be parsed into any other variant.
type Fallback struct {
	Raw string
}

// NewAnswer builds an Answer envelope. Used by the orchestrator for its
// fail-soft apology path.
func NewAnswer(text string) *Envelope {
	return &Envelope{Kind: KindAnswer, Answer: &Answer{Text: text}}
}

// NewFallback builds a Fallback envelope carrying the input unchanged.
func NewFallback(raw string) *Envelope {
	return &Envelope{Kind: KindFallback, Fallback: &Fallback{Raw: raw}}
}

// IsChart reports whether the populated variant is one of the five chart
// shapes.
func (e *Envelope) IsChart() bool {
	switch e.Kind {
	case KindBar, KindLine, KindScatter, KindPie, KindHeatmap:
		return true
	}
	return false
}

// MarshalJSON renders the envelope in the canonical wire shape, keyed by its
// kind. Chart payloads keep their loose fields; canonical chart structures
// come from the chart package.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindAnswer:
		return json.Marshal(map[string]string{"answer": e.Answer.Text})
	case KindTable:
		return json.Marshal(map[string]*Table{"table": e.Table})
	case KindBar:
		return json.Marshal(map[string]*Series{"bar": e.Bar})
	case KindLine:
		return json.Marshal(map[string]*Series{"line": e.Line})
	case KindScatter:
		return json.Marshal(map[string]*Scatter{"scatter": e.Scatter})
	case KindPie:
		return json.Marshal(map[string]*Pie{"pie": e.Pie})
	case KindHeatmap:
		return json.Marshal(map[string]*Heatmap{"heatmap": e.Heatmap})
	default:
		return json.Marshal(map[string]string{"fallback": e.Fallback.Raw})
	}
}

// UnmarshalJSON decodes the canonical wire shape produced by MarshalJSON.
// Unlike Parse it is strict: unrecognized shapes are an error, since the
// input here is our own serialization (cache entries, API payloads), not
// agent output.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if raw, ok := top["fallback"]; ok {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		*e = Envelope{Kind: KindFallback, Fallback: &Fallback{Raw: text}}
		return nil
	}
	for _, kind := range keyOrder {
		payload, ok := top[string(kind)]
		if !ok {
			continue
		}
		decoded := decodeVariant(kind, payload)
		if decoded == nil {
			return fmt.Errorf("malformed %s payload", kind)
		}
		*e = *decoded
		return nil
	}
	return fmt.Errorf("no recognized envelope key")
}
