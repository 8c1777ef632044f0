package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/dockpanel/internal/model"
)

func TestDispatcher_Project(t *testing.T) {
	d := NewDispatcher("docker")

	cmd, err := d.Project("/p/demo", "/p/demo/docker-compose.yml", model.ProjectLogs)
	require.NoError(t, err)
	assert.Equal(t, "/p/demo", cmd.Dir)
	assert.Equal(t, []string{"docker", "compose", "-f", "/p/demo/docker-compose.yml", "logs", "--tail", "200"}, cmd.Argv())

	_, err = d.Project("/p/demo", "/p/demo/docker-compose.yml", model.ProjectCommand(""))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDispatcher_Compose(t *testing.T) {
	d := NewDispatcher("/usr/bin/docker")

	want := map[model.ComposeProjectCommand][]string{
		model.ComposeStart:   {"up", "-d"},
		model.ComposeStop:    {"down"},
		model.ComposeRestart: {"restart"},
		model.ComposePull:    {"pull"},
		model.ComposeLogs:    {"logs", "--tail", "200"},
		model.ComposeDelete:  {"down", "--remove-orphans"},
	}
	require.Len(t, want, len(model.ComposeProjectCommands))

	for _, c := range model.ComposeProjectCommands {
		cmd, err := d.Compose([]string{"/srv/app/compose.yml", "/srv/app/prod.yml"}, c)
		require.NoError(t, err, c)
		assert.Equal(t, "/srv/app", cmd.Dir)
		expected := append([]string{"/usr/bin/docker", "compose", "-f", "/srv/app/compose.yml", "-f", "/srv/app/prod.yml"}, want[c]...)
		assert.Equal(t, expected, cmd.Argv(), c)
	}

	_, err := d.Compose(nil, model.ComposeStart)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDispatcher_Container(t *testing.T) {
	d := NewDispatcher("")

	want := map[model.ContainerCommand][]string{
		model.ContainerStop:    {"docker", "stop", "abc"},
		model.ContainerPause:   {"docker", "pause", "abc"},
		model.ContainerRestart: {"docker", "restart", "abc"},
		model.ContainerDelete:  {"docker", "rm", "-f", "abc"},
	}
	for _, c := range model.ContainerCommands {
		cmd, err := d.Container("abc", c)
		require.NoError(t, err, c)
		assert.Equal(t, want[c], cmd.Argv())
		assert.Empty(t, cmd.Dir)
	}

	_, err := d.Container("abc", model.ContainerCommand("kill"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDispatcher_RemoveImage(t *testing.T) {
	assert.Equal(t, []string{"docker", "rmi", "nginx:latest"}, NewDispatcher("docker").RemoveImage("nginx:latest").Argv())
}

func TestNormalizeComposeFiles(t *testing.T) {
	assert.Equal(t, []string{"/a.yml", "/b.yml"}, NormalizeComposeFiles([]string{" /a.yml", "", "/b.yml", "/a.yml "}))
	assert.Empty(t, NormalizeComposeFiles([]string{" ", ""}))
}
