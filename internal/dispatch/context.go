package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Shell runs commands inside a persistent shell session.
type Shell interface {
	Exec(cmd string) (stdout, stderr string, exitCode int, err error)
}

// Browser drives a headless browser session.
type Browser interface {
	Goto(url string) error
	Content() (string, error)
}

// FileManager performs file operations relative to a working directory.
type FileManager interface {
	Create(path string) (string, error)
	Read(path string) (string, error)
	Write(path string, content string) (string, error)
}

// Env provides the execution-context accessors injected into handlers.
// Providers are functions so backends can be attached lazily; a nil provider
// means the capability is unavailable.
type Env struct {
	Shells       func() Shell
	Browsers     func() Browser
	FileManagers func() FileManager
}

// hostFileManager operates directly on the host filesystem, rooted at a
// working directory.
type hostFileManager struct {
	root string
}

// NewHostEnv returns an Env backed by the host filesystem rooted at dir.
func NewHostEnv(dir string) *Env {
	fm := &hostFileManager{root: dir}
	return &Env{
		FileManagers: func() FileManager { return fm },
	}
}

func (m *hostFileManager) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.root, path)
}

func (m *hostFileManager) Create(path string) (string, error) {
	resolved := m.resolve(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("ensure parent dir: %w", err)
	}
	file, err := os.Create(resolved)
	if err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return resolved, nil
}

func (m *hostFileManager) Read(path string) (string, error) {
	data, err := os.ReadFile(m.resolve(path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *hostFileManager) Write(path string, content string) (string, error) {
	resolved := m.resolve(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("ensure parent dir: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return "", err
	}
	return resolved, nil
}
