package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFormData_NormalizesShapes(t *testing.T) {
	f, err := Parse(`services:
  api:
    image: node:20
    ports: "3000:3000"
    environment:
      - NODE_ENV = production
      - "EMPTY="
      - "URL=http://x/?a=b"
      - "=orphan"
    command: ["node", "server.js"]
    depends_on:
      cache:
        condition: service_started
    networks:
      edge: {}
networks:
  - edge
`)
	require.NoError(t, err)

	form := ToFormData(f)
	require.Len(t, form.Services, 1)
	svc := form.Services[0]

	assert.Equal(t, "api", svc.Name)
	assert.Equal(t, []string{"3000:3000"}, svc.Ports)
	assert.Equal(t, []KeyValue{
		{Key: "NODE_ENV", Value: "production"},
		{Key: "EMPTY", Value: ""},
		{Key: "URL", Value: "http://x/?a=b"},
	}, svc.Environment)
	assert.Equal(t, "node server.js", svc.Command)
	assert.Equal(t, []string{"cache"}, svc.DependsOn)
	assert.Equal(t, []string{"edge"}, svc.Networks)
	assert.Equal(t, []string{"edge"}, form.Networks)
	assert.Nil(t, form.Volumes)
}

func TestFromFormData_CleansAndDedupes(t *testing.T) {
	form := FormData{
		Services: []ServiceForm{
			{
				Name:        " web ",
				Image:       " nginx:1.27 ",
				Ports:       []string{"80:80", " 80:80 ", "", "443:443"},
				Environment: []KeyValue{{Key: " A ", Value: "1"}, {Key: "", Value: "dropped"}},
				Restart:     RestartAlways,
			},
			{Name: "   ", Image: "ignored"},
		},
		Networks: []string{"front", "front", " "},
	}

	f := FromFormData(form, nil)
	services := f.Services()
	require.Len(t, services, 1)
	web := services["web"].(map[string]any)

	assert.Equal(t, "nginx:1.27", web["image"])
	assert.Equal(t, []any{"80:80", "443:443"}, web["ports"])
	assert.Equal(t, map[string]any{"A": "1"}, web["environment"])
	assert.Equal(t, "always", web["restart"])
	assert.NotContains(t, web, "command")
	assert.Equal(t, map[string]any{"front": map[string]any{}}, f["networks"])
	assert.NotContains(t, f, "volumes")
}

func TestFromFormData_ClearedFieldsAreRemoved(t *testing.T) {
	original, err := Parse(`services:
  app:
    image: redis
    command: redis-server --save ""
    restart: always
    ulimits:
      nofile: 1024
volumes:
  data:
    driver: local
`)
	require.NoError(t, err)

	form := ToFormData(original)
	form.Services[0].Command = ""
	form.Services[0].Restart = ""
	form.Volumes = nil

	f := FromFormData(form, original)
	app := f.Services()["app"].(map[string]any)
	assert.NotContains(t, app, "command")
	assert.NotContains(t, app, "restart")
	assert.Contains(t, app, "ulimits")
	assert.NotContains(t, f, "volumes")

	// the original document is left untouched
	assert.Contains(t, original.Services()["app"].(map[string]any), "command")
}

func TestFromFormData_NoServicesDropsKey(t *testing.T) {
	f := FromFormData(FormData{}, File{"services": map[string]any{"old": map[string]any{}}})
	assert.NotContains(t, f, "services")
}

func TestFromFormData_NamedMapKeepsOriginalDefinitions(t *testing.T) {
	original := File{"volumes": map[string]any{
		"pgdata": map[string]any{"driver": "local"},
		"gone":   map[string]any{},
	}}
	f := FromFormData(FormData{Volumes: []string{" pgdata ", "fresh", "fresh", ""}}, original)
	assert.Equal(t, map[string]any{
		"pgdata": map[string]any{"driver": "local"},
		"fresh":  map[string]any{},
	}, f["volumes"])
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, cleanList([]string{" a", "b ", "a", "  "}))
	assert.Nil(t, cleanList([]string{"", " "}))
	assert.Equal(t, []any{"a", "b"}, anyList([]string{"a", "b"}))
}
