// Package layout maps project names onto the on-disk project tree:
// one directory per project under a single root, each holding a
// docker-compose.yml.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ComposeFileName is the file name of every managed compose file.
const ComposeFileName = "docker-compose.yml"

var (
	// ErrInvalidProjectName is returned when a name resolves outside the root.
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrInvalidProjectDir  = errors.New("invalid project directory")
	ErrInvalidComposeFile = errors.New("invalid docker-compose.yml")
)

type Layout struct {
	root string

	// writeFile is swapped in tests to count writes.
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// New resolves root to an absolute path. The directory is not created
// until EnsureProjectRoot is called.
func New(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root %s: %w", root, err)
	}
	return &Layout{root: abs, writeFile: os.WriteFile}, nil
}

// Root returns the absolute project root.
func (l *Layout) Root() string {
	return l.root
}

// EnsureProjectRoot creates the project root if needed and returns it.
func (l *Layout) EnsureProjectRoot() (string, error) {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return "", fmt.Errorf("create project root %s: %w", l.root, err)
	}
	return l.root, nil
}

// ProjectDir returns root/name. The resolved path must lie strictly below
// the root, compared case-insensitively.
func (l *Layout) ProjectDir(name string) (string, error) {
	dir := filepath.Join(l.root, name)
	if dir == l.root || !l.IsUnderRoot(dir) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProjectName, name)
	}
	return dir, nil
}

// ComposePath returns root/name/docker-compose.yml.
func (l *Layout) ComposePath(name string) (string, error) {
	dir, err := l.ProjectDir(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ComposeFileName), nil
}

// Paths returns both the project directory and its compose file path.
func (l *Layout) Paths(name string) (dir, composePath string, err error) {
	dir, err = l.ProjectDir(name)
	if err != nil {
		return "", "", err
	}
	return dir, filepath.Join(dir, ComposeFileName), nil
}

// IsUnderRoot reports whether path lies below the project root. Both sides
// are cleaned and lower-cased first, so a sibling such as "projects-evil"
// never matches the root "projects".
func (l *Layout) IsUnderRoot(path string) bool {
	return strings.HasPrefix(normalize(path), rootPrefix(l.root))
}

func normalize(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

func rootPrefix(root string) string {
	r := normalize(root)
	if strings.HasSuffix(r, string(filepath.Separator)) {
		return r
	}
	return r + string(filepath.Separator)
}

// ListProjectNames returns the names of the sub-directories of the root.
// A missing root yields no names.
func (l *Layout) ListProjectNames() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list project root %s: %w", l.root, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RemoveProjectDir deletes the project directory tree. An absent directory
// is not an error.
func (l *Layout) RemoveProjectDir(name string) error {
	dir, err := l.ProjectDir(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove project directory %s: %w", dir, err)
	}
	return nil
}

// ProjectDirExists reports whether root/name exists as a directory.
func (l *Layout) ProjectDirExists(name string) (bool, error) {
	dir, err := l.ProjectDir(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat project directory %s: %w", dir, err)
	}
	return info.IsDir(), nil
}
