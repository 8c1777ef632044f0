package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	mw "github.com/edvin/dockpanel/internal/api/middleware"
	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/docker"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/store"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return withActor(r)
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return withActor(r)
}

// withActor marks the request as authenticated by the admin key.
func withActor(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), mw.ActorKey, mw.AdminActor))
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// testEnv wires real services over a filesystem store in a temp dir and
// a recording executor.
type testEnv struct {
	root string
	exec *executor.MockExecutor
	svc  *core.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	l, err := layout.New(t.TempDir())
	require.NoError(t, err)

	exec := &executor.MockExecutor{}
	st := store.NewFilesystem(l)
	logger := zerolog.Nop()
	svc := core.NewServices(core.Deps{
		Store:  st,
		Layout: l,
		Exec:   exec,
		Reader: docker.NewReader(exec, l, st, "docker", logger),
		Logger: logger,
	})
	return &testEnv{root: l.Root(), exec: exec, svc: svc}
}
