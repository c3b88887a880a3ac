package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	env := Parse(`{"answer": "42 units"}`)
	require.Equal(t, KindAnswer, env.Kind)
	assert.Equal(t, "42 units", env.Answer.Text)
}

func TestParseTable(t *testing.T) {
	env := Parse(`{"table":{"columns":["region","sales"],"data":[["East",100],["West",150]]}}`)
	require.Equal(t, KindTable, env.Kind)
	assert.Equal(t, []string{"region", "sales"}, env.Table.Columns)
	require.Len(t, env.Table.Data, 2)
	assert.Equal(t, "East", env.Table.Data[0][0])
	assert.Equal(t, float64(100), env.Table.Data[0][1])
}

func TestParseBarWithProtocolAliases(t *testing.T) {
	env := Parse(`{"bar":{"columns":["A","B","C"],"data":[35,42,29]}}`)
	require.Equal(t, KindBar, env.Kind)
	assert.Len(t, env.Bar.Columns, 3)
	assert.Len(t, env.Bar.Data, 3)
	assert.Nil(t, env.Bar.Categories)
}

func TestParseEachChartKind(t *testing.T) {
	cases := map[string]Kind{
		`{"line":{"columns":["a"],"data":[1]}}`:                       KindLine,
		`{"scatter":{"x_data":[1,2],"y_data":[3,4]}}`:                 KindScatter,
		`{"pie":{"labels":["x","y"],"values":[60,40]}}`:               KindPie,
		`{"heatmap":{"data":[[1,2]],"x_labels":["a","b"]}}`:           KindHeatmap,
		`{"scatter":{"x":[1],"y":[2],"labels":["p"]}}`:                KindScatter,
		`{"heatmap":{"matrix":[[1,2],[3,4]],"y_labels":["r1","r2"]}}`: KindHeatmap,
	}
	for raw, want := range cases {
		env := Parse(raw)
		assert.Equal(t, want, env.Kind, "input: %s", raw)
	}
}

func TestParseInvalidJSONFallsBack(t *testing.T) {
	raw := "The total sales were 250 units."
	env := Parse(raw)
	require.Equal(t, KindFallback, env.Kind)
	// The fallback must carry the input unchanged.
	assert.Equal(t, raw, env.Fallback.Raw)
}

func TestParseUnrecognizedKeyFallsBack(t *testing.T) {
	raw := `{"chart": {"columns": ["A"], "data": [1]}}`
	env := Parse(raw)
	require.Equal(t, KindFallback, env.Kind)
	assert.Equal(t, raw, env.Fallback.Raw)
}

func TestParseMissingRequiredFieldFallsBack(t *testing.T) {
	cases := []string{
		`{"bar":{"columns":["A","B"]}}`,
		`{"bar":{"data":[1,2]}}`,
		`{"scatter":{"x_data":[1,2]}}`,
		`{"pie":{"values":[1,2]}}`,
		`{"table":{"columns":["a"]}}`,
		`{"heatmap":{"x_labels":["a"]}}`,
	}
	for _, raw := range cases {
		env := Parse(raw)
		assert.Equal(t, KindFallback, env.Kind, "input: %s", raw)
		assert.Equal(t, raw, env.Fallback.Raw)
	}
}

func TestParseMultiKeyUsesPrecedence(t *testing.T) {
	env := Parse(`{"bar":{"columns":["A"],"data":[1]},"answer":"both present"}`)
	assert.Equal(t, KindAnswer, env.Kind)

	env = Parse(`{"line":{"columns":["A"],"data":[1]},"pie":{"labels":["x"],"values":[1]}}`)
	assert.Equal(t, KindLine, env.Kind)
}

func TestParseStrictRejectsMultiKey(t *testing.T) {
	raw := `{"answer":"hi","bar":{"columns":["A"],"data":[1]}}`
	env := Parse(raw, WithStrict())
	require.Equal(t, KindFallback, env.Kind)
	assert.Equal(t, raw, env.Fallback.Raw)

	// Single-key responses still parse in strict mode.
	env = Parse(`{"answer":"hi"}`, WithStrict())
	assert.Equal(t, KindAnswer, env.Kind)
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	for _, raw := range []string{
		`{"answer":"hello"}`,
		`{"bar":{"categories":["A","B"],"values":[1,2]}}`,
		`{"heatmap":{"data":[[1,2],[3,4]],"x_labels":["a","b"]}}`,
	} {
		env := Parse(raw)
		require.NotEqual(t, KindFallback, env.Kind)

		data, err := json.Marshal(env)
		require.NoError(t, err)

		var decoded Envelope
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, env.Kind, decoded.Kind)
	}
}

func TestFallbackJSONRoundTrip(t *testing.T) {
	env := NewFallback("not json at all")
	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, KindFallback, decoded.Kind)
	assert.Equal(t, "not json at all", decoded.Fallback.Raw)
}
