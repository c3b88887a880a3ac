package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/deepblue-labs/datachat/apimodels"
	"github.com/deepblue-labs/datachat/internal/analyzer"
	"github.com/deepblue-labs/datachat/internal/chart"
	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/envelope"
	"github.com/deepblue-labs/datachat/internal/progress"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, table, ok := s.decodeAnalysisRequest(w, r)
	if !ok {
		return
	}

	result := s.analyzer.Analyze(r.Context(), table, req.Query, analyzer.Options{
		NoCache:     req.Options.NoCache,
		ChartHint:   req.Options.ChartHint,
		Model:       req.Options.Model,
		MaxTokens:   req.Options.MaxTokens,
		Temperature: req.Options.Temperature,
	})

	resp, err := buildResponse(result, chart.ParseStyle(req.Options.Style))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode analysis response", "error", err)
	}
}

// handleAnalyzeStream runs the same pipeline but surfaces progress events as
// server-sent events, ending with a "result" event. Streamed analyses never
// touch the cache.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, table, ok := s.decodeAnalysisRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	obs := &sseObserver{w: w, flusher: flusher}
	result := s.analyzer.Analyze(r.Context(), table, req.Query, analyzer.Options{
		Stream:      true,
		Observer:    obs,
		ChartHint:   req.Options.ChartHint,
		Model:       req.Options.Model,
		MaxTokens:   req.Options.MaxTokens,
		Temperature: req.Options.Temperature,
	})

	resp, err := buildResponse(result, chart.ParseStyle(req.Options.Style))
	if err != nil {
		obs.emit("error", map[string]string{"error": err.Error()})
		return
	}
	obs.emit("result", resp)
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"datasets": s.registry.Names()})
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apimodels.CacheInfo{TTLSeconds: int(s.cacheTTL.Seconds())})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.InvalidateAll(); err != nil {
		slog.Error("cache clear failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// decodeAnalysisRequest parses the request body and resolves the target
// table, writing the HTTP error itself when something is wrong.
func (s *Server) decodeAnalysisRequest(w http.ResponseWriter, r *http.Request) (apimodels.AnalysisRequest, *dataset.Table, bool) {
	var req apimodels.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return req, nil, false
	}
	defer r.Body.Close()

	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return req, nil, false
	}

	switch {
	case req.Dataset != nil:
		name := req.Dataset.Name
		if name == "" {
			name = "uploaded"
		}
		table, err := dataset.FromRecords(name, req.Dataset.Columns, req.Dataset.Rows)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid dataset: %v", err), http.StatusBadRequest)
			return req, nil, false
		}
		return req, table, true

	case req.DatasetName != "":
		table, ok := s.registry.Get(req.DatasetName)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown dataset %q", req.DatasetName), http.StatusNotFound)
			return req, nil, false
		}
		return req, table, true

	default:
		http.Error(w, "dataset or datasetName is required", http.StatusBadRequest)
		return req, nil, false
	}
}

// buildResponse converts an analysis result into its wire form, normalizing
// chart payloads. A chart that cannot be repaired is reported in ChartError
// while the envelope is still returned.
func buildResponse(result *analyzer.Result, style chart.Style) (*apimodels.AnalysisResponse, error) {
	raw, err := json.Marshal(result.Envelope)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	resp := &apimodels.AnalysisResponse{
		Kind:   string(result.Envelope.Kind),
		Result: raw,
		Metadata: apimodels.AnalysisMetadata{
			ID:         result.Metadata.ID,
			Duration:   result.Metadata.Duration,
			Model:      result.Metadata.Model,
			TokensUsed: result.Metadata.TokensUsed,
			Cached:     result.Metadata.Cached,
		},
	}

	if result.Envelope.IsChart() {
		c, err := chart.Normalize(result.Envelope)
		if err != nil {
			resp.ChartError = err.Error()
		} else {
			resp.Chart = chartPayload(c, style)
		}
	}
	return resp, nil
}

func chartPayload(c *chart.Chart, style chart.Style) *apimodels.ChartPayload {
	p := &apimodels.ChartPayload{
		Type:       string(c.Kind),
		Categories: c.Categories,
		Values:     c.Values,
		X:          c.X,
		Y:          c.Y,
		Labels:     c.Labels,
		Matrix:     c.Matrix,
		XLabels:    c.XLabels,
		YLabels:    c.YLabels,
		Palette:    style.Palette(),
	}
	if c.Kind == envelope.KindHeatmap {
		p.Colormap = style.HeatmapColormap()
	}
	return p
}

// sseObserver forwards progress events to the client as server-sent events
// in arrival order.
type sseObserver struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func (o *sseObserver) Handle(e progress.Event) {
	o.emit("progress", e)
}

func (o *sseObserver) emit(event string, payload any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode SSE payload", "error", err)
		return
	}
	fmt.Fprintf(o.w, "event: %s\ndata: %s\n\n", event, data)
	o.flusher.Flush()
}
