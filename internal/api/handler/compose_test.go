package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeRun(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "compose.yml")
	override := filepath.Join(dir, "compose.override.yml")
	require.NoError(t, os.WriteFile(base, []byte(demoContent), 0o644))
	require.NoError(t, os.WriteFile(override, []byte("services: {}\n"), 0o644))

	h := NewCompose(env.svc.Project)
	rec := httptest.NewRecorder()

	h.Run(rec, newRequest(http.MethodPost, "/compose/run", map[string]any{
		"compose_files": []string{base, " " + override + " ", base},
		"command":       "delete",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.exec.Calls(), 1)
	call := env.exec.Calls()[0]
	assert.Equal(t, dir, call.Dir)
	assert.Equal(t, []string{"docker", "compose", "-f", base, "-f", override, "down", "--remove-orphans"}, call.Argv())
}

func TestComposeRun_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	h := NewCompose(env.svc.Project)
	rec := httptest.NewRecorder()

	h.Run(rec, newRequest(http.MethodPost, "/compose/run", map[string]any{
		"compose_files": []string{filepath.Join(t.TempDir(), "missing.yml")},
		"command":       "up",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.exec.Calls())
}

func TestComposeRun_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	h := NewCompose(env.svc.Project)
	rec := httptest.NewRecorder()

	h.Run(rec, newRequest(http.MethodPost, "/compose/run", map[string]any{
		"compose_files": []string{"/tmp/compose.yml"},
		"command":       "build",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComposeRun_NoFiles(t *testing.T) {
	env := newTestEnv(t)
	h := NewCompose(env.svc.Project)
	rec := httptest.NewRecorder()

	h.Run(rec, newRequestRaw(http.MethodPost, "/compose/run", `{"compose_files":[],"command":"up"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
