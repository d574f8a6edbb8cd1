package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/shortword/pkg/buildinfo"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/metrics"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/observability"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

const (
	headerRequestID = "X-Request-ID"

	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		bf       baseFlags
		uf       buildFlags
		addr     string
		table    string
		maxSteps int
		maxLen   int
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "serve <definition>",
		Short: "Serve factorizations over HTTP",
		Long: `Load or build the puzzle's table and answer factorization requests over HTTP.

Endpoints:
  GET  /healthz       build information
  GET  /metrics       Prometheus metrics
  GET  /v1/puzzle     puzzle and table summary
  POST /v1/factorize  exact factorization of {"target": "..."}
  POST /v1/solve      one request, or {"targets": [...]} for a batch`,
		Example: `  shortword serve pocket.toml --addr :8080
  curl -s localhost:8080/v1/factorize -d '{"target":"(8,9,11,10)"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := c.options(&bf, &uf)
			if err != nil {
				return err
			}
			opts.MaxSteps = maxSteps
			opts.MaxSolveLen = maxLen
			opts.Workers = workers

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			p, err := c.preparePuzzle(ctx, runner, args[0], opts)
			if err != nil {
				return err
			}
			t, err := c.solveTable(ctx, runner, p, table, opts)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			metrics.New(reg).Install()
			defer observability.Reset()

			s := &server{logger: c.Logger, runner: runner, puzzle: p, table: t, opts: opts, gatherer: reg}
			return s.listen(ctx, addr)
		},
	}

	bf.register(cmd)
	uf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&table, "table", "", "serve the table stored in this file instead of the cache")
	cmd.Flags().IntVar(&maxSteps, "max-steps", pipeline.DefaultMaxSteps, "state budget for colored solves")
	cmd.Flags().IntVar(&maxLen, "max-len", 0, "drop colored candidates longer than this (0 = unbounded)")
	cmd.Flags().IntVar(&workers, "workers", pipeline.DefaultWorkers, "concurrent solves per batch request")
	return cmd
}

// =============================================================================
// Server
// =============================================================================

// server answers factorization requests against one prepared puzzle and a
// read-only table.
type server struct {
	logger   *log.Logger
	runner   *pipeline.Runner
	puzzle   *pipeline.Puzzle
	table    *minkwitz.Table
	opts     pipeline.Options
	gatherer prometheus.Gatherer
}

func (s *server) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr, "puzzle", s.puzzle.Def.Name)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/puzzle", s.handlePuzzle)
		r.Post("/factorize", s.handleFactorize)
		r.Post("/solve", s.handleSolve)
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

type requestIDKey struct{}

// requestID propagates X-Request-ID, generating one when the client sent
// none, and attaches a request-scoped logger to the context.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = withLogger(ctx, s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// instrument reports every request to the HTTP hooks, labelled with the
// matched route pattern rather than the raw path.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		hooks.OnResponse(r.Context(), r.Method, route, sw.status, time.Since(start))
		loggerFromContext(r.Context()).Debug("request",
			"method", r.Method, "route", route, "status", sw.status, "duration", time.Since(start))
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Puzzle string         `json:"puzzle"`
	Build  buildinfo.Info `json:"build"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Puzzle: s.puzzle.Def.Name, Build: buildinfo.Get()})
}

type puzzleResponse struct {
	Name       string   `json:"name"`
	Size       int      `json:"size"`
	Generators []string `json:"generators"`
	Base       []int    `json:"base"`
	OrbitSizes []int    `json:"orbit_sizes,omitempty"`
	Order      string   `json:"order,omitempty"`
	Cells      int      `json:"cells"`
	MaxWord    int      `json:"max_word"`
	Full       bool     `json:"full"`
	Processed  int      `json:"processed"`
}

func (s *server) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	p, st := s.puzzle, s.table.Stats()
	resp := puzzleResponse{
		Name:       p.Def.Name,
		Size:       p.Gens.Size(),
		Base:       p.Base,
		OrbitSizes: p.OrbitSizes,
		Cells:      st.Cells,
		MaxWord:    st.MaxWord,
		Full:       p.OrbitSizes != nil && s.table.Full(p.OrbitSizes),
		Processed:  s.table.Processed,
	}
	for _, g := range p.Gens.Generators() {
		resp.Generators = append(resp.Generators, g.Name)
	}
	if p.Order != nil {
		resp.Order = p.Order.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

type factorizeRequest struct {
	Target string `json:"target"`
}

func (s *server) handleFactorize(w http.ResponseWriter, r *http.Request) {
	var req factorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sol, err := s.runner.Solve(r.Context(), s.puzzle, s.table, pipeline.SolveRequest{Target: req.Target}, s.requestOpts(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sol)
}

type solveRequest struct {
	pipeline.SolveRequest
	Targets []pipeline.SolveRequest `json:"targets,omitempty"`
}

type batchResponse struct {
	Solutions []pipeline.Solution `json:"solutions"`
	Failed    int                 `json:"failed"`
}

func (s *server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts := s.requestOpts(r)

	if req.Targets == nil {
		sol, err := s.runner.Solve(r.Context(), s.puzzle, s.table, req.SolveRequest, opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sol)
		return
	}

	if req.Target != "" {
		writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "target and targets are mutually exclusive"))
		return
	}
	sols, err := s.runner.SolveBatch(r.Context(), s.puzzle, s.table, req.Targets, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := batchResponse{Solutions: sols}
	for _, sol := range sols {
		if sol.Error != "" {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) requestOpts(r *http.Request) pipeline.Options {
	opts := s.opts
	opts.Logger = loggerFromContext(r.Context())
	return opts
}

// =============================================================================
// Encoding
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{
		Error:     errs.UserMessage(err),
		Code:      string(code),
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
