package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/buildinfo"
	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/metrics"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
	"github.com/matzehuels/flowcanvas/pkg/render"
	"github.com/matzehuels/flowcanvas/pkg/session"
)

const (
	// maxBodyBytes bounds pointer event request bodies.
	maxBodyBytes = 1 << 16

	sessionCleanupInterval = time.Minute
	shutdownTimeout        = 5 * time.Second
)

// serveCommand creates the HTTP editor command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve an HTTP editor for a workflow graph",
		Long: `Serve a workflow graph over HTTP.

Clients open a drag session and send pointer events to it:

  POST   /sessions                 start a session
  POST   /sessions/{id}/press      {"x":..,"y":..} grab the joint or block under the pointer
  POST   /sessions/{id}/move       {"x":..,"y":..} drag the grabbed element
  POST   /sessions/{id}/release    end the drag
  DELETE /sessions/{id}

The current state is available as GET /graph.svg (optionally ?select=JOINT),
/layout.json, and /graph.json. Prometheus metrics are served on /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			// Canvas hooks are bound when the canvas is built.
			metrics.Install()
			defer observability.Reset()

			cv, err := loadCanvas(ctx, graphArg(args))
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}

			srv := newEditorServer(cv, runner, c.Config.Render.pipelineOptions(), c.Config.Serve.SessionTTL.Duration, logger)
			return srv.listen(ctx, cmd.OutOrStdout(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// editorServer
// =============================================================================

// editorServer exposes one canvas to many HTTP clients. mu serializes every
// canvas access, so pointer events apply one at a time in arrival order.
type editorServer struct {
	mu       sync.Mutex
	canvas   *canvas.Canvas
	sessions *session.MemoryStore
	runner   *pipeline.Runner
	opts     pipeline.Options
	logger   *log.Logger
}

func newEditorServer(cv *canvas.Canvas, runner *pipeline.Runner, opts pipeline.Options, ttl time.Duration, logger *log.Logger) *editorServer {
	return &editorServer{
		canvas:   cv,
		sessions: session.NewMemoryStore(cv, ttl),
		runner:   runner,
		opts:     opts,
		logger:   logger,
	}
}

// routes builds the HTTP handler.
func (s *editorServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(buildinfo.String() + "\n"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Get("/graph.svg", s.handleSVG)
	r.Get("/layout.json", s.handleLayout)
	r.Get("/graph.json", s.handleGraph)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/press", s.handlePress)
			r.Post("/move", s.handleMove)
			r.Post("/release", s.handleRelease)
		})
	})

	return r
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (s *editorServer) listen(ctx context.Context, w io.Writer, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		out := newPrinter(w)
		out.success("Editor listening on %s", StyleHighlight.Render("http://"+addr))
		out.detail("Press Ctrl+C to stop")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down editor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

func (s *editorServer) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.sessions.Cleanup(ctx); err == nil && n > 0 {
				s.logger.Debug("removed expired sessions", "count", n)
			}
		}
	}
}

// observe reports each request to the HTTP hooks and the debug log.
func (s *editorServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, duration)
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", duration)
	})
}

// =============================================================================
// Canvas state
// =============================================================================

func (s *editorServer) handleSVG(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	opts.Formats = []string{render.FormatSVG}
	opts.SelectedJoint = r.URL.Query().Get("select")

	s.mu.Lock()
	result, err := s.runner.Execute(r.Context(), s.canvas, opts)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentType(render.FormatSVG))
	w.Header().Set("ETag", `"`+result.LayoutHash[:16]+`"`)
	w.Write(result.Artifacts[render.FormatSVG])
}

func (s *editorServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	l, err := s.runner.Layout(r.Context(), s.canvas, s.opts)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l)
}

func (s *editorServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	g := graph.FromWorkflow(s.canvas.Blocks(), s.canvas.Connections())
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, g)
}

// =============================================================================
// Drag sessions
// =============================================================================

// pointerRequest is the body of press and move events.
type pointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// sessionResponse reports a session's gesture after an event.
type sessionResponse struct {
	ID      string         `json:"id"`
	Gesture canvas.Gesture `json:"gesture"`
	Applied bool           `json:"applied"`
}

func (s *editorServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID)
	s.writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Gesture: sess.Tracker.Gesture()})
}

func (s *editorServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	g := sess.Tracker.Gesture()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Gesture: g})
}

func (s *editorServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *editorServer) handlePress(w http.ResponseWriter, r *http.Request) {
	s.pointerEvent(w, r, func(t *canvas.Tracker, p geom.Point) bool {
		return t.Press(p, canvas.DefaultHitRadius)
	})
}

func (s *editorServer) handleMove(w http.ResponseWriter, r *http.Request) {
	s.pointerEvent(w, r, func(t *canvas.Tracker, p geom.Point) bool {
		return t.Drag(p)
	})
}

func (s *editorServer) handleRelease(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	sess.Tracker.End()
	g := sess.Tracker.Gesture()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Gesture: g, Applied: true})
}

// pointerEvent decodes a pointer position and applies fn to the session's
// tracker under the canvas lock.
func (s *editorServer) pointerEvent(w http.ResponseWriter, r *http.Request, fn func(*canvas.Tracker, geom.Point) bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req pointerRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode pointer"))
		return
	}
	p := geom.Pt(req.X, req.Y)
	if !p.IsFinite() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "pointer must be finite"))
		return
	}

	s.mu.Lock()
	applied := fn(sess.Tracker, p)
	g := sess.Tracker.Gesture()
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Gesture: g, Applied: applied})
}

func (s *editorServer) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *editorServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *editorServer) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.writeJSON(w, code.HTTPStatus(), errorResponse{Code: code, Message: errors.UserMessage(err)})
}
