package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/grouping"
	"github.com/edvin/dockpanel/internal/model"
)

func psOutput(root string) string {
	return strings.Join([]string{
		`{"ID":"a1","Image":"nginx:latest","Names":"demo-app-1","Status":"Up 2 hours","Labels":"com.docker.compose.project=demo,com.docker.compose.project.config_files=` + filepath.Join(root, "demo", "docker-compose.yml") + `"}`,
		`{"ID":"a2","Image":"redis","Names":"demo-cache-1","Status":"Exited (0) 1 hour ago","Labels":"com.docker.compose.project=demo"}`,
		`{"ID":"b1","Image":"postgres","Names":"legacy-db-1","Status":"Up 5 days","Labels":"com.docker.compose.project=legacy,com.docker.compose.project.config_files=/opt/legacy/compose.yml"}`,
		`{"ID":"c1","Image":"busybox","Names":"scratch","Status":"Created","Labels":""}`,
	}, "\n")
}

func TestContainerService_Rows(t *testing.T) {
	env := newTestEnv(t)
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		return psOutput(env.root), nil
	}

	rows, err := env.svc.Container.Rows(context.Background(), model.ContainerFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "project:demo", rows[0].Key)
	assert.True(t, rows[0].IsManagedProject)
	assert.Equal(t, 1, rows[0].RunningCount)
	assert.Equal(t, 2, rows[0].Total)

	assert.Equal(t, "project:legacy", rows[1].Key)
	assert.False(t, rows[1].IsManagedProject)
	assert.Equal(t, []string{"/opt/legacy/compose.yml"}, rows[1].ComposeConfigFiles)

	assert.Equal(t, grouping.UnassignedKey, rows[2].Key)
}

func TestContainerService_Rows_Filtered(t *testing.T) {
	env := newTestEnv(t)
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		return psOutput(env.root), nil
	}

	rows, err := env.svc.Container.Rows(context.Background(), model.ContainerFilter{ManagedOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "demo", rows[0].ProjectName)

	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) { return "", nil }
	rows, err = env.svc.Container.Rows(context.Background(), model.ContainerFilter{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestContainerService_StatusSummary(t *testing.T) {
	env := newTestEnv(t)
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		return psOutput(env.root), nil
	}

	summary, err := env.svc.Container.StatusSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]model.ProjectStatus{"demo": {RunningCount: 1, Total: 1}}, summary,
		"only containers resolved as managed are counted")
}

func TestContainerService_Run(t *testing.T) {
	env := newTestEnv(t)
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) { return "abc", nil }

	res, err := env.svc.Container.Run(context.Background(), "abc", model.ContainerDelete)
	require.NoError(t, err)
	assert.Equal(t, "abc", res.ID)
	assert.Equal(t, "abc", res.Output)
	assert.Equal(t, [][]string{{"docker", "rm", "-f", "abc"}}, env.exec.Argvs())
}

func TestContainerService_Run_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Container.Run(ctx, "", model.ContainerStop)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.Container.Run(ctx, "abc", model.ContainerCommand("freeze"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, env.exec.Calls())
}

func TestContainerService_Run_ExecutionError(t *testing.T) {
	env := newTestEnv(t)
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		return "", &executor.ExecError{Output: "Error: No such container: abc"}
	}

	_, err := env.svc.Container.Run(context.Background(), "abc", model.ContainerStop)
	require.ErrorIs(t, err, ErrExecution)
	assert.Equal(t, "Error: No such container: abc", err.Error())
}

func TestContainerService_List(t *testing.T) {
	env := newTestEnv(t)
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		return psOutput(env.root), nil
	}

	all, err := env.svc.Container.List(context.Background(), model.ContainerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	running, err := env.svc.Container.List(context.Background(), model.ContainerFilter{State: model.ContainerRunning})
	require.NoError(t, err)
	require.Len(t, running, 2)
	assert.Equal(t, "a1", running[0].ID)
	assert.Equal(t, "b1", running[1].ID)

	none, err := env.svc.Container.List(context.Background(), model.ContainerFilter{Keyword: "nothing-matches"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
