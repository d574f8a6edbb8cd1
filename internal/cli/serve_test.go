package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/shortword/pkg/cache"
	"github.com/matzehuels/shortword/pkg/metrics"
	"github.com/matzehuels/shortword/pkg/observability"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	logger := log.New(io.Discard)

	def, err := pipeline.LoadDefinition(eightpoint)
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	p, err := runner.Prepare(ctx, def, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := pipeline.Options{Rounds: 1000, ImproveEvery: 100, MaxWordLen: 40, Logger: logger}
	table, _, err := runner.Build(ctx, p, opts)
	if err != nil {
		t.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	metrics.New(reg).Install()
	t.Cleanup(observability.Reset)

	s := &server{logger: logger, runner: runner, puzzle: p, table: table, opts: opts, gatherer: reg}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	decode(t, resp, &h)
	if h.Status != "ok" || h.Puzzle != "eightpoint" || h.Build.GoVersion == "" {
		t.Errorf("health = %+v", h)
	}
	if resp.Header.Get(headerRequestID) == "" {
		t.Error("response should carry a generated request ID")
	}
}

func TestServePuzzle(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/puzzle")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var p puzzleResponse
	decode(t, resp, &p)
	if p.Order != "360" || !p.Full || p.Size != 8 || len(p.Generators) != 2 {
		t.Errorf("puzzle = %+v", p)
	}
}

func TestServeFactorize(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/factorize", `{"target":"(0,4,6)(1,5,7)"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var sol pipeline.Solution
	decode(t, resp, &sol)
	if sol.Kind != pipeline.KindExact || sol.Length == 0 || sol.Word == "" {
		t.Errorf("solution = %+v", sol)
	}
}

func TestServeErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/v1/factorize", `{"target":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "/v1/factorize", `{"goal":"x"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad target", "/v1/factorize", `{"target":"(0,9)"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"outside group", "/v1/factorize", `{"target":"(0,1)"}`, http.StatusUnprocessableEntity, "INCOMPLETE"},
		{"target and targets", "/v1/solve", `{"target":"(0,1)","targets":[{"target":"(0,1)"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+tt.path, strings.NewReader(tt.body))
			req.Header.Set(headerRequestID, "req-123")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorResponse
			decode(t, resp, &e)
			if e.Code != tt.code || e.RequestID != "req-123" || e.Error == "" {
				t.Errorf("error = %+v", e)
			}
			if got := resp.Header.Get(headerRequestID); got != "req-123" {
				t.Errorf("request ID header = %q", got)
			}
		})
	}
}

func TestServeSolve(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/solve", `{"target":"(0,6,4)(1,7,5)","labels":"x;x;y;y;z;z;w;w"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var sol pipeline.Solution
	decode(t, resp, &sol)
	if sol.Kind != pipeline.KindColored {
		t.Errorf("solution = %+v, want a colored solve", sol)
	}

	resp = post(t, ts.URL+"/v1/solve", `{"targets":[{"target":"(0,4)(2,3,7,1)"},{"target":"(0,1)"},{"target":"","colored":true}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("batch status = %d", resp.StatusCode)
	}
	var batch batchResponse
	decode(t, resp, &batch)
	if len(batch.Solutions) != 3 || batch.Failed != 1 {
		t.Fatalf("batch = %+v", batch)
	}
	if batch.Solutions[1].Code != "INCOMPLETE" {
		t.Errorf("odd target = %+v", batch.Solutions[1])
	}
	if batch.Solutions[2].Kind != pipeline.KindColored || batch.Solutions[2].Length != 0 {
		t.Errorf("identity colored = %+v", batch.Solutions[2])
	}
}

func TestServeMetrics(t *testing.T) {
	ts := newTestServer(t)
	post(t, ts.URL+"/v1/factorize", `{"target":"(0,4,6)(1,5,7)"}`)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`shortword_http_requests_total{method="POST",route="/v1/factorize",status="200"} 1`,
		`shortword_searches_total`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestServeNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/nothing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
