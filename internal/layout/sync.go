package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// EnsureComposeFile makes the file at composePath hold exactly content,
// creating projectDir when it is missing. The file is only written when
// it is absent or its bytes differ. The returned bool reports whether a
// write happened.
func (l *Layout) EnsureComposeFile(projectDir, composePath, content string) (bool, error) {
	dirInfo, err := os.Stat(projectDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(projectDir, 0o755); err != nil {
			return false, fmt.Errorf("create project directory %s: %w", projectDir, err)
		}
	case err != nil:
		return false, fmt.Errorf("stat project directory %s: %w", projectDir, err)
	case !dirInfo.IsDir():
		return false, fmt.Errorf("%w: %s", ErrInvalidProjectDir, projectDir)
	}

	fileInfo, err := os.Stat(composePath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, l.write(composePath, content)
	}
	if err != nil {
		return false, fmt.Errorf("stat compose file %s: %w", composePath, err)
	}
	if !fileInfo.Mode().IsRegular() {
		return false, fmt.Errorf("%w: %s", ErrInvalidComposeFile, composePath)
	}

	current, err := os.ReadFile(composePath)
	if err != nil {
		return false, fmt.Errorf("read compose file %s: %w", composePath, err)
	}
	if bytes.Equal(current, []byte(content)) {
		return false, nil
	}
	return true, l.write(composePath, content)
}

// SyncProject is EnsureComposeFile for the paths of a named project.
func (l *Layout) SyncProject(name, content string) (string, error) {
	dir, composePath, err := l.Paths(name)
	if err != nil {
		return "", err
	}
	if _, err := l.EnsureComposeFile(dir, composePath, content); err != nil {
		return "", err
	}
	return composePath, nil
}

func (l *Layout) write(path, content string) error {
	if err := l.writeFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write compose file %s: %w", path, err)
	}
	return nil
}
