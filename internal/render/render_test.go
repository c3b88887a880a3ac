package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepblue-labs/datachat/internal/chart"
	"github.com/deepblue-labs/datachat/internal/envelope"
)

func render(t *testing.T, raw string) string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, Render(&out, envelope.Parse(raw), chart.StyleDefault))
	return out.String()
}

func TestRenderAnswer(t *testing.T) {
	out := render(t, `{"answer": "The total is 42."}`)
	assert.Contains(t, out, "The total is 42.")
}

func TestRenderFallback(t *testing.T) {
	out := render(t, "plain model text, no JSON")
	assert.Contains(t, out, "(unstructured response)")
	assert.Contains(t, out, "plain model text, no JSON")
}

func TestRenderTable(t *testing.T) {
	out := render(t, `{"table":{"columns":["region","units"],"data":[["East",10],["West",20]]}}`)
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "units")
	assert.Contains(t, out, "East")
	assert.Contains(t, out, "20")
}

func TestRenderBar(t *testing.T) {
	out := render(t, `{"bar":{"categories":["East","West"],"values":[10,20]}}`)
	assert.Contains(t, out, "East")
	assert.Contains(t, out, "West")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "20")
}

func TestRenderLine(t *testing.T) {
	out := render(t, `{"line":{"categories":["q1","q2","q3"],"values":[1,5,3]}}`)
	assert.Contains(t, out, "▁")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "q1 q2 q3")
}

func TestRenderScatter(t *testing.T) {
	out := render(t, `{"scatter":{"x_data":[1,2],"y_data":[3,4],"labels":["a","b"]}}`)
	assert.Contains(t, out, "1\t3\ta")
	assert.Contains(t, out, "2\t4\tb")
}

func TestRenderPie(t *testing.T) {
	out := render(t, `{"pie":{"labels":["yes","no"],"values":[3,1]}}`)
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "25.0%")
}

func TestRenderHeatmap(t *testing.T) {
	out := render(t, `{"heatmap":{"data":[[1,2],[3,4]],"x_labels":["a","b"],"y_labels":["r1","r2"]}}`)
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "a b")
}

func TestRenderBrokenChartReturnsError(t *testing.T) {
	var out strings.Builder
	env := envelope.Parse(`{"bar":{"categories":["East","West"],"values":[10]}}`)
	err := Render(&out, env, chart.StyleDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render bar chart")
}
