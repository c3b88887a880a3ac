package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepblue-labs/datachat/apimodels"
	"github.com/deepblue-labs/datachat/internal/analyzer"
	"github.com/deepblue-labs/datachat/internal/cache"
	"github.com/deepblue-labs/datachat/internal/config"
	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/llm"
)

type fakeProvider struct {
	content string
	calls   int
}

func (f *fakeProvider) Analyze(ctx context.Context, system, user string, opts ...llm.Option) (*llm.Response, error) {
	f.calls++
	return &llm.Response{Content: f.content}, nil
}

func newTestServer(t *testing.T, provider llm.Provider) (*httptest.Server, *dataset.Registry, cache.Store) {
	t.Helper()
	store := cache.NewMemory(time.Hour)
	registry := dataset.NewRegistry()

	cfg := config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Cache:  config.CacheConfig{TTL: time.Hour},
	}
	s := New(cfg, analyzer.New(provider, store), store, registry)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, registry, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func inlineRequest(query string) apimodels.AnalysisRequest {
	return apimodels.AnalysisRequest{
		Query: query,
		Dataset: &apimodels.TablePayload{
			Name:    "sales",
			Columns: []string{"region", "units"},
			Rows:    [][]any{{"East", 10}, {"West", 20}},
		},
	}
}

func TestAnalyzeInlineDataset(t *testing.T) {
	ts, _, _ := newTestServer(t, &fakeProvider{
		content: `{"bar":{"categories":["East","West"],"values":[10,20]}}`,
	})

	resp := postJSON(t, ts.URL+"/api/v1/analyze", inlineRequest("units by region"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body apimodels.AnalysisResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "bar", body.Kind)
	require.NotNil(t, body.Chart)
	assert.Equal(t, []string{"East", "West"}, body.Chart.Categories)
	assert.Equal(t, []float64{10, 20}, body.Chart.Values)
	assert.NotEmpty(t, body.Chart.Palette)
	assert.NotEmpty(t, body.Metadata.ID)
}

func TestAnalyzeBrokenChartReportsChartError(t *testing.T) {
	ts, _, _ := newTestServer(t, &fakeProvider{
		content: `{"bar":{"categories":["East","West"],"values":[10]}}`,
	})

	resp := postJSON(t, ts.URL+"/api/v1/analyze", inlineRequest("units by region"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body apimodels.AnalysisResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "bar", body.Kind)
	assert.Nil(t, body.Chart)
	assert.NotEmpty(t, body.ChartError)
}

func TestAnalyzeRegisteredDataset(t *testing.T) {
	provider := &fakeProvider{content: `{"answer": "ok"}`}
	ts, registry, _ := newTestServer(t, provider)

	table, err := dataset.FromRecords("sales",
		[]string{"region"}, [][]dataset.Value{{"East"}})
	require.NoError(t, err)
	registry.Add(table)

	resp := postJSON(t, ts.URL+"/api/v1/analyze", apimodels.AnalysisRequest{
		Query:       "anything",
		DatasetName: "sales",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, provider.calls)
}

func TestAnalyzeUnknownDataset(t *testing.T) {
	ts, _, _ := newTestServer(t, &fakeProvider{content: `{"answer": "ok"}`})

	resp := postJSON(t, ts.URL+"/api/v1/analyze", apimodels.AnalysisRequest{
		Query:       "anything",
		DatasetName: "nope",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyzeMissingQuery(t *testing.T) {
	ts, _, _ := newTestServer(t, &fakeProvider{content: `{"answer": "ok"}`})

	req := inlineRequest("")
	resp := postJSON(t, ts.URL+"/api/v1/analyze", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeMissingDataset(t *testing.T) {
	ts, _, _ := newTestServer(t, &fakeProvider{content: `{"answer": "ok"}`})

	resp := postJSON(t, ts.URL+"/api/v1/analyze", apimodels.AnalysisRequest{Query: "q"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeStreamEmitsResult(t *testing.T) {
	ts, _, store := newTestServer(t, &fakeProvider{content: `{"answer": "42"}`})

	resp := postJSON(t, ts.URL+"/api/v1/analyze/stream", inlineRequest("total?"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	events := string(body)
	assert.Contains(t, events, "event: progress")
	assert.Contains(t, events, "event: result")
	assert.Contains(t, events, `"kind":"answer"`)

	// Streamed analyses are never written to the cache.
	mem := store.(*cache.Memory)
	assert.Equal(t, 0, mem.Len())
}

func TestDatasetsEndpoint(t *testing.T) {
	ts, registry, _ := newTestServer(t, &fakeProvider{})
	table, err := dataset.FromRecords("sales",
		[]string{"region"}, [][]dataset.Value{{"East"}})
	require.NoError(t, err)
	registry.Add(table)

	resp, err := http.Get(ts.URL + "/api/v1/datasets")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"sales"}, body["datasets"])
}

func TestCacheInfoAndClear(t *testing.T) {
	ts, _, store := newTestServer(t, &fakeProvider{})
	store.Put("k", nil)

	resp, err := http.Get(ts.URL + "/api/v1/cache")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info apimodels.CacheInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, 3600, info.TTLSeconds)

	clearResp := postJSON(t, ts.URL+"/api/v1/cache/clear", struct{}{})
	assert.Equal(t, http.StatusOK, clearResp.StatusCode)
	assert.Equal(t, 0, store.(*cache.Memory).Len())
}

func TestHealth(t *testing.T) {
	ts, _, _ := newTestServer(t, &fakeProvider{})

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"status":"ok"`))
}
