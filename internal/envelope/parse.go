package envelope

import (
	"encoding/json"
	"log/slog"
)

// Option configures Parse.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict makes Parse treat a response containing more than one
// recognized top-level key as malformed (Fallback) instead of applying the
// precedence order.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// Parse converts raw agent output into an Envelope. It never returns an
// error: invalid JSON, unrecognized keys, or structurally incomplete
// payloads all yield a Fallback carrying the input unchanged.
func Parse(raw string, opts ...Option) *Envelope {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		slog.Debug("agent output is not a JSON object, falling back", "error", err)
		return NewFallback(raw)
	}

	if o.strict && countRecognized(top) > 1 {
		slog.Warn("agent output contains multiple response shapes", "keys", len(top))
		return NewFallback(raw)
	}

	for _, kind := range keyOrder {
		payload, ok := top[string(kind)]
		if !ok {
			continue
		}
		if env := decodeVariant(kind, payload); env != nil {
			return env
		}
		// A recognized key with a malformed payload is still a parse
		// failure for the whole response.
		slog.Debug("agent output payload malformed, falling back", "key", string(kind))
		return NewFallback(raw)
	}
	return NewFallback(raw)
}

func countRecognized(top map[string]json.RawMessage) int {
	n := 0
	for _, kind := range keyOrder {
		if _, ok := top[string(kind)]; ok {
			n++
		}
	}
	return n
}

// decodeVariant decodes one payload into its variant, returning nil when a
// required field is absent or the payload does not decode.
func decodeVariant(kind Kind, payload json.RawMessage) *Envelope {
	switch kind {
	case KindAnswer:
		var text string
		if json.Unmarshal(payload, &text) != nil {
			return nil
		}
		return &Envelope{Kind: KindAnswer, Answer: &Answer{Text: text}}

	case KindTable:
		var t Table
		if json.Unmarshal(payload, &t) != nil || t.Columns == nil || t.Data == nil {
			return nil
		}
		return &Envelope{Kind: KindTable, Table: &t}

	case KindBar, KindLine:
		var s Series
		if json.Unmarshal(payload, &s) != nil {
			return nil
		}
		if s.Categories == nil && s.Columns == nil {
			return nil
		}
		if s.Values == nil && s.Data == nil {
			return nil
		}
		if kind == KindBar {
			return &Envelope{Kind: KindBar, Bar: &s}
		}
		return &Envelope{Kind: KindLine, Line: &s}

	case KindScatter:
		var s Scatter
		if json.Unmarshal(payload, &s) != nil {
			return nil
		}
		if (s.X == nil && s.XData == nil) || (s.Y == nil && s.YData == nil) {
			return nil
		}
		return &Envelope{Kind: KindScatter, Scatter: &s}

	case KindPie:
		var p Pie
		if json.Unmarshal(payload, &p) != nil || p.Labels == nil {
			return nil
		}
		if p.Values == nil && p.Data == nil {
			return nil
		}
		return &Envelope{Kind: KindPie, Pie: &p}

	case KindHeatmap:
		var h Heatmap
		if json.Unmarshal(payload, &h) != nil {
			return nil
		}
		if h.Matrix == nil && h.Data == nil {
			return nil
		}
		return &Envelope{Kind: KindHeatmap, Heatmap: &h}
	}
	return nil
}
