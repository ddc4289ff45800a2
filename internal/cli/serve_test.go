package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
)

// sessionBody mirrors sessionResponse for decoding.
type sessionBody struct {
	ID      string `json:"id"`
	Applied bool   `json:"applied"`
	Gesture struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	} `json:"gesture"`
}

func newTestServer(t *testing.T) (*editorServer, *httptest.Server) {
	t.Helper()
	cv, err := loadCanvas(testContext(), "")
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	t.Cleanup(func() { runner.Close() })

	s := newEditorServer(cv, runner, DefaultConfig().Render.pipelineOptions(), time.Minute, logger)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestServeHealthAndVersion(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok\n" {
		t.Errorf("healthz body = %q", body)
	}

	resp = do(t, http.MethodGet, ts.URL+"/version", "")
	expectStatus(t, resp, http.StatusOK)
}

func TestServeGraphSVG(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/graph.svg?select=if-1-input", "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("missing ETag")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `marker-end="url(#arrow-selected)"`) {
		t.Error("selected joint not highlighted")
	}

	resp = do(t, http.MethodGet, ts.URL+"/graph.svg?select=a%20b", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestServeGraphJSON(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/graph.json", "")
	expectStatus(t, resp, http.StatusOK)
	g := decode[struct {
		Blocks      []struct{ ID string } `json:"blocks"`
		Connections []struct{ ID string } `json:"connections"`
	}](t, resp)
	if len(g.Blocks) != 4 || len(g.Connections) != 3 {
		t.Errorf("graph.json has %d blocks, %d connections", len(g.Blocks), len(g.Connections))
	}
}

func TestServeDragSession(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/sessions", "")
	expectStatus(t, resp, http.StatusCreated)
	sess := decode[sessionBody](t, resp)
	if sess.ID == "" || sess.Gesture.Kind != "none" {
		t.Fatalf("created session = %+v", sess)
	}
	base := ts.URL + "/sessions/" + sess.ID

	resp = do(t, http.MethodPost, base+"/press", `{"x":150,"y":130}`)
	expectStatus(t, resp, http.StatusOK)
	got := decode[sessionBody](t, resp)
	if !got.Applied || got.Gesture.Kind != "block" || got.Gesture.ID != "trigger-1" {
		t.Fatalf("press = %+v, want block trigger-1", got)
	}

	resp = do(t, http.MethodPost, base+"/move", `{"x":150,"y":305}`)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[sessionBody](t, resp); !got.Applied {
		t.Error("move not applied")
	}

	resp = do(t, http.MethodGet, base+"/", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[sessionBody](t, resp); got.Gesture.Kind != "block" {
		t.Errorf("session gesture = %q, want block", got.Gesture.Kind)
	}

	resp = do(t, http.MethodPost, base+"/release", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[sessionBody](t, resp); got.Gesture.Kind != "none" {
		t.Errorf("gesture after release = %q, want none", got.Gesture.Kind)
	}

	resp = do(t, http.MethodGet, ts.URL+"/layout.json", "")
	expectStatus(t, resp, http.StatusOK)
	l := decode[struct {
		Connections []struct {
			ID   string `json:"id"`
			Path string `json:"path"`
		} `json:"connections"`
	}](t, resp)
	want := "M 200 325 L 220 325 C 312.5 325, 187.5 150, 280 150 L 300 150"
	if len(l.Connections) == 0 || l.Connections[0].Path != want {
		t.Errorf("conn-1 path after drag = %+v, want %q", l.Connections, want)
	}

	resp = do(t, http.MethodDelete, base+"/", "")
	expectStatus(t, resp, http.StatusNoContent)
	resp = do(t, http.MethodGet, base+"/", "")
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, http.MethodDelete, base+"/", "")
	expectStatus(t, resp, http.StatusNoContent)
}

func TestServeJointPress(t *testing.T) {
	s, ts := newTestServer(t)

	sess := decode[sessionBody](t, do(t, http.MethodPost, ts.URL+"/sessions", ""))
	base := ts.URL + "/sessions/" + sess.ID

	got := decode[sessionBody](t, do(t, http.MethodPost, base+"/press", `{"x":302,"y":151}`))
	if got.Gesture.Kind != "joint" || got.Gesture.ID != "if-1-input" {
		t.Fatalf("press near joint = %+v", got)
	}
	decode[sessionBody](t, do(t, http.MethodPost, base+"/move", `{"x":340,"y":80}`))

	j, _, _ := s.canvas.Joint("if-1-input")
	if j.Position != geom.Pt(340, 100) {
		t.Errorf("if-1-input at %v, want (340, 100) on the top face", j.Position)
	}
}

func TestServePressEmptySpace(t *testing.T) {
	_, ts := newTestServer(t)
	sess := decode[sessionBody](t, do(t, http.MethodPost, ts.URL+"/sessions", ""))

	got := decode[sessionBody](t, do(t, http.MethodPost, ts.URL+"/sessions/"+sess.ID+"/press", `{"x":-500,"y":-500}`))
	if got.Applied || got.Gesture.Kind != "none" {
		t.Errorf("press on empty canvas = %+v", got)
	}
	got = decode[sessionBody](t, do(t, http.MethodPost, ts.URL+"/sessions/"+sess.ID+"/move", `{"x":0,"y":0}`))
	if got.Applied {
		t.Error("move without a gesture reported applied")
	}
}

func TestServeErrors(t *testing.T) {
	_, ts := newTestServer(t)
	sess := decode[sessionBody](t, do(t, http.MethodPost, ts.URL+"/sessions", ""))
	base := ts.URL + "/sessions/" + sess.ID

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown session", http.MethodPost, ts.URL + "/sessions/nope/press", `{"x":1,"y":1}`, http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"malformed body", http.MethodPost, base + "/press", `{"x":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, base + "/move", `{"x":1,"y":1,"z":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown route", http.MethodGet, ts.URL + "/nowhere", "", http.StatusNotFound, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.body)
			expectStatus(t, resp, tt.status)
			body := decode[errorResponse](t, resp)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestServeMetrics(t *testing.T) {
	_, ts := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/healthz", "")

	resp := do(t, http.MethodGet, ts.URL+"/metrics", "")
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("/metrics does not serve the default registry")
	}
}
