package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/dockpanel/internal/compose"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/model"
)

const demoContent = "services:\n  app:\n    image: nginx:latest\n"

func readCompose(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.root, name, "docker-compose.yml"))
	require.NoError(t, err)
	return string(data)
}

// ---------- End to end ----------

func TestProjectService_DemoLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.svc.Project

	_, err := svc.Add(ctx, "demo", strPtr(demoContent), "admin")
	require.NoError(t, err)

	page, err := svc.Query(ctx, model.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "demo", page.Data[0].Name)

	env.exec.RunFunc = func(_ context.Context, cmd executor.Command) (string, error) {
		return "Container demo-app-1  Started\n", nil
	}
	res, err := svc.Run(ctx, "demo", model.ProjectStart)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Output)

	composePath := filepath.Join(env.root, "demo", "docker-compose.yml")
	calls := env.exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"docker", "compose", "-f", composePath, "up", "-d"}, calls[0].Argv())
	assert.Equal(t, filepath.Join(env.root, "demo"), calls[0].Dir)

	// Cleanup failure keeps the record and directory.
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		return "", &executor.ExecError{Output: "network demo_default is in use"}
	}
	_, err = svc.Delete(ctx, "demo", true)
	require.ErrorIs(t, err, ErrExecution)
	assert.Contains(t, err.Error(), "network demo_default is in use")
	_, err = svc.Get(ctx, "demo")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(env.root, "demo"))

	// Successful cleanup runs down before removing anything.
	env.exec.RunFunc = func(context.Context, executor.Command) (string, error) {
		_, statErr := os.Stat(composePath)
		require.NoError(t, statErr, "compose file must still exist during down")
		return "Container demo-app-1  Removed", nil
	}
	del, err := svc.Delete(ctx, "demo", true)
	require.NoError(t, err)
	assert.Equal(t, "demo", del.Name)
	assert.Contains(t, del.Output, "Removed")

	last := env.exec.Calls()[len(env.exec.Calls())-1]
	assert.Equal(t, []string{"docker", "compose", "-f", composePath, "down"}, last.Argv())

	_, err = svc.Get(ctx, "demo")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoDirExists(t, filepath.Join(env.root, "demo"))
}

// ---------- Add ----------

func TestProjectService_Add_DefaultContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.svc.Project.Add(ctx, "web", nil, "")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.DefaultComposeContent, p.Content)
	assert.Nil(t, p.CreatedUser)
	assert.Equal(t, model.DefaultComposeContent, readCompose(t, env, "web"))
}

func TestProjectService_Add_RecordsActor(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.svc.Project.Add(context.Background(), "web", strPtr(demoContent), "alice")
	require.NoError(t, err)
	require.NotNil(t, p.CreatedUser)
	assert.Equal(t, "alice", *p.CreatedUser)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestProjectService_Add_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	_, err = env.svc.Project.Add(ctx, "demo", nil, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProjectService_Add_ExistingDirectoryConflicts(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.root, "stray"), 0o755))

	_, err := env.svc.Project.Add(context.Background(), "stray", nil, "")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, env.store.projects)
}

func TestProjectService_Add_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		project string
		content *string
	}{
		{"empty name", "", nil},
		{"traversal", "../etc", nil},
		{"space", "my app", nil},
		{"too long", strings.Repeat("a", 65), nil},
		{"empty content", "ok", strPtr("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Project.Add(ctx, tt.project, tt.content, "")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, env.exec.Calls())
	assert.NoDirExists(t, env.root, "validation happens before any I/O")
}

// ---------- Get / Query ----------

func TestProjectService_Get_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Project.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "project ghost does not exist", err.Error())
}

func TestProjectService_Query_Paging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := env.svc.Project.Add(ctx, name, nil, "")
		require.NoError(t, err)
	}

	page, err := env.svc.Project.Query(ctx, model.ProjectFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageNum)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "gamma", page.Data[0].Name, "most recently updated first")

	page, err = env.svc.Project.Query(ctx, model.ProjectFilter{Name: "zzz"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

// ---------- Update ----------

func TestProjectService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	p, err := env.svc.Project.Update(ctx, "demo", demoContent, "bob")
	require.NoError(t, err)
	assert.Equal(t, demoContent, p.Content)
	assert.True(t, p.UpdatedAt.After(created.UpdatedAt))
	require.NotNil(t, p.UpdatedUser)
	assert.Equal(t, "bob", *p.UpdatedUser)
	assert.Equal(t, demoContent, readCompose(t, env, "demo"))
}

func TestProjectService_Update_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Project.Update(context.Background(), "ghost", demoContent, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoDirExists(t, filepath.Join(env.root, "ghost"))
}

func TestProjectService_Update_WaitsForLockHeldByAnotherProcess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	// A second layout on the same root holds the lock the way panelctl or
	// panel-mcp would.
	other, err := layout.New(env.root)
	require.NoError(t, err)
	release, err := other.LockProject("demo")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := env.svc.Project.Update(ctx, "demo", demoContent, "")
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("update ran while another process held the project lock")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("update did not resume after the lock was released")
	}
	assert.Equal(t, demoContent, readCompose(t, env, "demo"))
}

func TestProjectService_Update_SameNameIsSerialized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Project.Update(ctx, "demo", demoContent, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := env.svc.Project.Get(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, readCompose(t, env, "demo"), stored.Content)
}

// ---------- Delete ----------

func TestProjectService_Delete_OnlyRemovesWithoutDocker(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	res, err := env.svc.Project.Delete(ctx, "demo", false)
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Empty(t, env.exec.Calls())
	assert.NoDirExists(t, filepath.Join(env.root, "demo"))
	assert.Empty(t, env.store.projects)
}

func TestProjectService_Delete_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Project.Delete(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, env.exec.Calls())
}

func TestProjectService_Delete_OrphanDirectory(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.root, "orphan")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	_, err := env.svc.Project.Delete(context.Background(), "orphan", true)
	require.NoError(t, err)
	assert.Empty(t, env.exec.Calls(), "no compose file, nothing to bring down")
	assert.NoDirExists(t, dir)
}

// ---------- Run ----------

func TestProjectService_Run_SyncsDriftedFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", strPtr(demoContent), "")
	require.NoError(t, err)

	path := filepath.Join(env.root, "demo", "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte("edited by hand"), 0o644))

	_, err = env.svc.Project.Run(ctx, "demo", model.ProjectPull)
	require.NoError(t, err)
	assert.Equal(t, demoContent, readCompose(t, env, "demo"))
}

func TestProjectService_Run_EveryCommand(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	for _, cmd := range model.ProjectCommands {
		_, err := env.svc.Project.Run(ctx, "demo", cmd)
		require.NoError(t, err, cmd)
	}

	path := filepath.Join(env.root, "demo", "docker-compose.yml")
	assert.Equal(t, [][]string{
		{"docker", "compose", "-f", path, "up", "-d"},
		{"docker", "compose", "-f", path, "down"},
		{"docker", "compose", "-f", path, "restart"},
		{"docker", "compose", "-f", path, "pull"},
		{"docker", "compose", "-f", path, "logs", "--tail", "200"},
	}, env.exec.Argvs())
}

func TestProjectService_Run_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", nil, "")
	require.NoError(t, err)

	_, err = env.svc.Project.Run(ctx, "demo", model.ProjectCommand("explode"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, env.exec.Calls())
}

func TestProjectService_Run_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Project.Run(context.Background(), "ghost", model.ProjectStart)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------- RunCompose ----------

func TestProjectService_RunCompose(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "compose.yml")
	override := filepath.Join(dir, "compose.override.yml")
	require.NoError(t, os.WriteFile(base, []byte(demoContent), 0o644))
	require.NoError(t, os.WriteFile(override, []byte(demoContent), 0o644))

	_, err := env.svc.Project.RunCompose(context.Background(),
		[]string{" " + base + " ", override, base}, model.ComposeDelete)
	require.NoError(t, err)

	calls := env.exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dir, calls[0].Dir)
	assert.Equal(t, []string{
		"docker", "compose", "-f", base, "-f", override, "down", "--remove-orphans",
	}, calls[0].Argv())
}

func TestProjectService_RunCompose_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name  string
		files []string
		cmd   model.ComposeProjectCommand
	}{
		{"no files", nil, model.ComposeStart},
		{"blank file", []string{"  "}, model.ComposeStart},
		{"missing file", []string{filepath.Join(dir, "nope.yml")}, model.ComposeStart},
		{"directory", []string{dir}, model.ComposeStart},
		{"unknown command", []string{filepath.Join(dir, "nope.yml")}, model.ComposeProjectCommand("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Project.RunCompose(ctx, tt.files, tt.cmd)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, env.exec.Calls())
}

// ---------- Duplicate / Form ----------

func TestProjectService_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", strPtr(demoContent), "")
	require.NoError(t, err)

	p, err := env.svc.Project.Duplicate(ctx, "demo", "demo-copy", "carol")
	require.NoError(t, err)
	assert.Equal(t, demoContent, p.Content)
	assert.Equal(t, demoContent, readCompose(t, env, "demo-copy"))

	_, err = env.svc.Project.Duplicate(ctx, "ghost", "other", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_FormRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	content := "services:\n  app:\n    image: nginx:latest\n    x-custom: keep\n"
	_, err := env.svc.Project.Add(ctx, "demo", strPtr(content), "")
	require.NoError(t, err)

	form, err := env.svc.Project.Form(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", form.Name)
	require.Len(t, form.Services, 1)
	assert.Equal(t, "nginx:latest", form.Services[0].Image)

	form.Services[0].Image = "nginx:1.27"
	form.Services[0].Ports = []string{"8080:80"}
	p, err := env.svc.Project.UpdateForm(ctx, "demo", *form, "")
	require.NoError(t, err)

	doc, err := compose.Parse(p.Content)
	require.NoError(t, err)
	app := doc.Services()["app"].(map[string]any)
	assert.Equal(t, "nginx:1.27", app["image"])
	assert.Equal(t, []any{"8080:80"}, app["ports"])
	assert.Equal(t, "keep", app["x-custom"])
}

func TestProjectService_Form_InvalidYAML(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Project.Add(ctx, "demo", strPtr("- just\n- a list\n"), "")
	require.NoError(t, err)

	_, err = env.svc.Project.Form(ctx, "demo")
	assert.ErrorIs(t, err, ErrValidation)
}
