package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/testutils"
	httpadapter "github.com/aretw0/storygraph/pkg/adapters/http"
	"github.com/aretw0/storygraph/pkg/adapters/remote"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/aretw0/storygraph/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() map[string]string {
	return map[string]string{
		"intro": "events: []\nexitCondition:\n  type: Linear\n  nextUnit: hall\n",
		"hall":  "events: []\nexitCondition:\n  type: Branching\n  branches:\n    left: intro\n",
		"bad":   "events: [unclosed\n",
	}
}

// newServer wires an editor, its stream manager and the handler the same
// way the serve command does.
func newServer(t *testing.T, units map[string]string) (http.Handler, *storygraph.Editor) {
	t.Helper()
	streams := httpadapter.NewStreamManager(nil)
	ed := testutils.NewEditor(t, units, storygraph.WithLifecycleHooks(streams.Hooks()))
	return httpadapter.NewHandler(ed,
		httpadapter.WithStreams(streams),
		httpadapter.WithMetricsHandler(promhttp.Handler()),
	), ed
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		status   int
		contains string
	}{
		{"Health", "GET", "/health", "", http.StatusOK, `"ok"`},
		{"Info", "GET", "/info", "", http.StatusOK, storygraph.Version},
		{"Metrics", "GET", "/metrics", "", http.StatusOK, "go_goroutines"},
		{"Graph", "GET", "/graph", "", http.StatusOK, `"e-intro-hall-next"`},
		{"Refresh", "POST", "/graph/refresh", "", http.StatusOK, `"nodes"`},
		{"Mermaid", "GET", "/graph/mermaid?select=hall", "", http.StatusOK, "class hall selected;"},
		{"List Units", "GET", "/units", "", http.StatusOK, `["bad","hall","intro"]`},
		{"Get Unit", "GET", "/units/hall", "", http.StatusOK, `"handles":["left"]`},
		{"Get Broken Unit", "GET", "/units/bad", "", http.StatusOK, `"parse_error"`},
		{"Get Missing Unit", "GET", "/units/nope", "", http.StatusNotFound, "unit not found"},
		{"Create Unit", "POST", "/units", `{"id":"cellar"}`, http.StatusCreated, `"kind":"Linear"`},
		{"Create Existing", "POST", "/units", `{"id":"intro"}`, http.StatusConflict, "already exists"},
		{"Create Invalid", "POST", "/units", `{"id":"../x"}`, http.StatusBadRequest, "invalid unit id"},
		{"Create Bad Body", "POST", "/units", `{`, http.StatusBadRequest, "invalid request body"},
		{"Connect", "POST", "/edges", `{"source":"hall","target":"intro","handle":"right"}`, http.StatusOK, `"e-hall-intro-right"`},
		{"Connect Broken Source", "POST", "/edges", `{"source":"bad","target":"intro","handle":"x"}`, http.StatusUnprocessableEntity, "bad"},
		{"Disconnect Unconfirmed", "DELETE", "/edges/hall/left", "", http.StatusPreconditionRequired, "confirm=true"},
		{"Disconnect Missing Unit", "DELETE", "/edges/nope/left?confirm=true", "", http.StatusNotFound, "unit not found"},
		{"Restyle", "PATCH", "/edges/intro/next/style", `{"field":"strokeStyle","value":"dashed"}`, http.StatusOK, `"stroke_style":"dashed"`},
		{"Restyle Invalid", "PATCH", "/edges/intro/next/style", `{"field":"strokeStyle","value":"wavy"}`, http.StatusBadRequest, "invalid visual style"},
		{"Delete Unconfirmed", "DELETE", "/units/hall", "", http.StatusPreconditionRequired, "confirm"},
		{"Rename Onto Existing", "POST", "/units/hall/rename", `{"new_id":"intro"}`, http.StatusConflict, "already exists"},
		{"CORS Preflight", "OPTIONS", "/graph", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newServer(t, fixture())
			w := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestServer_EditingFlow(t *testing.T) {
	h, ed := newServer(t, fixture())

	w := do(t, h, "PUT", "/units/bad", `{"content":"events: []\n"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var unit map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unit))
	assert.NotContains(t, unit, "parse_error", "raw save repairs the document")

	w = do(t, h, "POST", "/units/hall/rename", `{"new_id":"lobby"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	doc, err := ed.ReadUnit(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, "lobby", doc.Unit.Exit.NextUnit)

	w = do(t, h, "DELETE", "/edges/lobby/left?confirm=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, ed.Graph().EdgesFrom("lobby"))

	w = do(t, h, "DELETE", "/units/lobby?confirm=true", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	_, ok := ed.Graph().Node("lobby")
	assert.False(t, ok)
	assert.Len(t, ed.Graph().EdgesFrom("intro"), 1, "references to a deleted unit dangle")
}

func TestServer_StoreAPIContract(t *testing.T) {
	h, _ := newServer(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ports.RunUnitStoreContract(t, remote.New(srv.URL))
}

func TestServer_StoreAPIMoveDoesNotRepair(t *testing.T) {
	h, ed := newServer(t, fixture())
	srv := httptest.NewServer(h)
	defer srv.Close()

	client := remote.New(srv.URL)
	require.NoError(t, client.Rename(context.Background(), "hall", "lobby"))

	_, ok := ed.Graph().Node("lobby")
	assert.True(t, ok, "the graph follows store API writes")
	doc, err := ed.ReadUnit(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, "hall", doc.Unit.Exit.NextUnit)
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := newServer(t, fixture())
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?watch=edges", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	next := func() string {
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream closed early")
				if strings.HasPrefix(line, "data: ") || strings.HasPrefix(line, "event: ") {
					return line
				}
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for an event")
			}
		}
	}

	assert.Equal(t, "event: ping", next())
	assert.Equal(t, "data: connected", next())
	assert.Equal(t, "event: snapshot", next())
	assert.Contains(t, next(), `"e-intro-hall-next"`)

	// A node-only change is filtered out; the edge change that follows is delivered.
	w := do(t, h, "POST", "/units", `{"id":"cellar"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, "POST", "/edges", `{"source":"intro","target":"cellar","handle":"next"}`)
	require.Equal(t, http.StatusOK, w.Code)

	line := next()
	require.True(t, strings.HasPrefix(line, "data: "), line)
	var diff domain.GraphDiff
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &diff))
	assert.Equal(t, []string{"e-intro-hall-next"}, diff.RemovedEdges)
	require.Len(t, diff.UpsertedEdges, 1)
	assert.Equal(t, "cellar", diff.UpsertedEdges[0].Target)
}

func TestStreamManager_UnsubscribeTwice(t *testing.T) {
	sm := httpadapter.NewStreamManager(nil)
	ch, cancel := sm.Subscribe()
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	sm.Broadcast("after close")
}
