// Package chart canonicalizes parsed chart payloads into rendering-ready
// structures: aliases resolved, accidental one-element wrapping repaired,
// lengths validated. It repairs known deviations; it never invents data.
package chart

import (
	"fmt"
	"strconv"

	"github.com/deepblue-labs/datachat/internal/envelope"
)

// Chart is the canonical, typed form of a chart envelope.
type Chart struct {
	Kind envelope.Kind `json:"kind"`

	// Bar, line and pie.
	Categories []string  `json:"categories,omitempty"`
	Values     []float64 `json:"values,omitempty"`

	// Scatter.
	X      []float64 `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`

	// Heatmap.
	Matrix  [][]float64 `json:"matrix,omitempty"`
	XLabels []string    `json:"xLabels,omitempty"`
	YLabels []string    `json:"yLabels,omitempty"`
}

// ShapeError reports a chart payload that cannot be repaired into a
// renderable shape. The analysis result itself is still valid; only the
// derived visualization is lost.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("chart field %q: %s", e.Field, e.Reason)
}

// ErrNotChart is returned when Normalize receives a non-chart envelope.
var ErrNotChart = fmt.Errorf("envelope is not a chart")

// Normalize converts a chart envelope into its canonical structure.
// Normalizing data that is already canonical is a no-op.
func Normalize(env *envelope.Envelope) (*Chart, error) {
	switch env.Kind {
	case envelope.KindBar:
		return normalizeSeries(envelope.KindBar, env.Bar)
	case envelope.KindLine:
		return normalizeSeries(envelope.KindLine, env.Line)
	case envelope.KindScatter:
		return normalizeScatter(env.Scatter)
	case envelope.KindPie:
		return normalizePie(env.Pie)
	case envelope.KindHeatmap:
		return normalizeHeatmap(env.Heatmap)
	default:
		return nil, ErrNotChart
	}
}

func normalizeSeries(kind envelope.Kind, s *envelope.Series) (*Chart, error) {
	categories, err := stringSeq(pick(s.Categories, s.Columns), "categories")
	if err != nil {
		return nil, err
	}
	values, err := numberSeq(pick(s.Values, s.Data), "values")
	if err != nil {
		return nil, err
	}
	if len(categories) != len(values) {
		return nil, &ShapeError{Field: "values", Reason: fmt.Sprintf(
			"%d values for %d categories", len(values), len(categories))}
	}
	return &Chart{Kind: kind, Categories: categories, Values: values}, nil
}

func normalizeScatter(s *envelope.Scatter) (*Chart, error) {
	x, err := numberSeq(pick(s.X, s.XData), "x")
	if err != nil {
		return nil, err
	}
	y, err := numberSeq(pick(s.Y, s.YData), "y")
	if err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, &ShapeError{Field: "y", Reason: fmt.Sprintf(
			"%d y values for %d x values", len(y), len(x))}
	}

	var labels []string
	if s.Labels != nil {
		labels, err = stringSeq(s.Labels, "labels")
		if err != nil {
			return nil, err
		}
		if len(labels) != len(x) {
			return nil, &ShapeError{Field: "labels", Reason: fmt.Sprintf(
				"%d labels for %d points", len(labels), len(x))}
		}
	}
	return &Chart{Kind: envelope.KindScatter, X: x, Y: y, Labels: labels}, nil
}

func normalizePie(p *envelope.Pie) (*Chart, error) {
	labels, err := stringSeq(p.Labels, "labels")
	if err != nil {
		return nil, err
	}
	values, err := numberSeq(pick(p.Values, p.Data), "values")
	if err != nil {
		return nil, err
	}
	if len(labels) != len(values) {
		return nil, &ShapeError{Field: "values", Reason: fmt.Sprintf(
			"%d values for %d labels", len(values), len(labels))}
	}
	return &Chart{Kind: envelope.KindPie, Categories: labels, Values: values}, nil
}

func normalizeHeatmap(h *envelope.Heatmap) (*Chart, error) {
	rows := pick(h.Matrix, h.Data)

	// Matrix-level unwrap: each row wrapped as [row]. Only applies when the
	// wrapped element is itself a row, so genuine Nx1 matrices survive.
	if len(rows) > 0 {
		if wrapped, ok := rows[0].([]any); ok && len(wrapped) == 1 {
			if _, inner := wrapped[0].([]any); inner {
				unwrapped, err := unwrap(rows, "matrix")
				if err != nil {
					return nil, err
				}
				rows = unwrapped
			}
		}
	}

	matrix := make([][]float64, len(rows))
	width := -1
	for i, raw := range rows {
		row, ok := raw.([]any)
		if !ok {
			return nil, &ShapeError{Field: "matrix", Reason: fmt.Sprintf(
				"row %d is not an array", i)}
		}
		nums, err := numberSeq(row, fmt.Sprintf("matrix row %d", i))
		if err != nil {
			return nil, err
		}
		if width == -1 {
			width = len(nums)
		} else if len(nums) != width {
			return nil, &ShapeError{Field: "matrix", Reason: fmt.Sprintf(
				"row %d has %d cells, expected %d", i, len(nums), width)}
		}
		matrix[i] = nums
	}

	chart := &Chart{Kind: envelope.KindHeatmap, Matrix: matrix}
	var err error
	if h.XLabels != nil {
		if chart.XLabels, err = stringSeq(h.XLabels, "x_labels"); err != nil {
			return nil, err
		}
		if width >= 0 && len(chart.XLabels) != width {
			return nil, &ShapeError{Field: "x_labels", Reason: fmt.Sprintf(
				"%d labels for %d columns", len(chart.XLabels), width)}
		}
	}
	if h.YLabels != nil {
		if chart.YLabels, err = stringSeq(h.YLabels, "y_labels"); err != nil {
			return nil, err
		}
		if len(chart.YLabels) != len(matrix) {
			return nil, &ShapeError{Field: "y_labels", Reason: fmt.Sprintf(
				"%d labels for %d rows", len(chart.YLabels), len(matrix))}
		}
	}
	return chart, nil
}

// pick returns the first non-nil alias.
func pick(a, b []any) []any {
	if a != nil {
		return a
	}
	return b
}

// unwrap repairs the degenerate shape where every element arrives as a
// one-element array. The check looks only at the first element; if the rest
// of the sequence does not match that shape it is unrepairable.
func unwrap(seq []any, field string) ([]any, error) {
	if len(seq) == 0 {
		return seq, nil
	}
	first, ok := seq[0].([]any)
	if !ok || len(first) != 1 {
		return seq, nil
	}
	out := make([]any, len(seq))
	for i, v := range seq {
		inner, ok := v.([]any)
		if !ok || len(inner) != 1 {
			return nil, &ShapeError{Field: field, Reason: fmt.Sprintf(
				"element %d is not a one-element array like the first", i)}
		}
		out[i] = inner[0]
	}
	return out, nil
}

func numberSeq(seq []any, field string) ([]float64, error) {
	if seq == nil {
		return nil, &ShapeError{Field: field, Reason: "missing"}
	}
	seq, err := unwrap(seq, field)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(seq))
	for i, v := range seq {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ShapeError{Field: field, Reason: fmt.Sprintf(
				"element %d (%v) is not numeric", i, v)}
		}
		out[i] = f
	}
	return out, nil
}

func stringSeq(seq []any, field string) ([]string, error) {
	if seq == nil {
		return nil, &ShapeError{Field: field, Reason: "missing"}
	}
	seq, err := unwrap(seq, field)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(seq))
	for i, v := range seq {
		switch x := v.(type) {
		case string:
			out[i] = x
		case bool:
			out[i] = strconv.FormatBool(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		case int:
			out[i] = strconv.Itoa(x)
		default:
			return nil, &ShapeError{Field: field, Reason: fmt.Sprintf(
				"element %d is not a scalar label", i)}
		}
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
