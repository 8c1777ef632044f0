package request

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireName_Valid(t *testing.T) {
	name, err := RequireName("shop-api_2")
	require.NoError(t, err)
	assert.Equal(t, "shop-api_2", name)
}

func TestRequireName_Empty(t *testing.T) {
	_, err := RequireName("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required project name")
}

func TestRequireName_Invalid(t *testing.T) {
	for _, name := range []string{"../etc", "a b", "name.with.dots", strings.Repeat("x", 65)} {
		_, err := RequireName(name)
		assert.Error(t, err, name)
	}
}

func newJSONRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestDecode_AddProject(t *testing.T) {
	var req AddProject
	err := Decode(newJSONRequest(t, `{"name":"demo","content":"services: {}\n"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "demo", req.Name)
	require.NotNil(t, req.Content)
	assert.Equal(t, "services: {}\n", *req.Content)
}

func TestDecode_AddProjectWithoutContent(t *testing.T) {
	var req AddProject
	require.NoError(t, Decode(newJSONRequest(t, `{"name":"demo"}`), &req))
	assert.Nil(t, req.Content)
}

func TestDecode_InvalidJSON(t *testing.T) {
	var req AddProject
	err := Decode(newJSONRequest(t, `{not json`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_ProjectNameRule(t *testing.T) {
	var req AddProject
	err := Decode(newJSONRequest(t, `{"name":"bad/name"}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDecode_MissingName(t *testing.T) {
	var req DuplicateProject
	err := Decode(newJSONRequest(t, `{}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestDecode_RunCompose(t *testing.T) {
	var req RunCompose
	err := Decode(newJSONRequest(t, `{"compose_files":["/srv/a/docker-compose.yml"],"command":"up"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/a/docker-compose.yml"}, req.ComposeFiles)

	err = Decode(newJSONRequest(t, `{"compose_files":[],"command":"up"}`), &req)
	assert.Error(t, err)
}

func TestDecode_EmptyContentRejected(t *testing.T) {
	var req UpdateProject
	err := Decode(newJSONRequest(t, `{"content":""}`), &req)
	assert.Error(t, err)
}
