package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockProject takes an exclusive advisory lock for name that is shared by
// every process managing the same root, so panel-api, panel-mcp and
// panelctl serialize on one project. The lock file lives next to the
// project directory as ".<name>.lock" and is left in place on release.
func (l *Layout) LockProject(name string) (func(), error) {
	if _, err := l.ProjectDir(name); err != nil {
		return nil, err
	}
	path := filepath.Join(l.root, "."+name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
