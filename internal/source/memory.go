package source

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// MemoryBackend is an in-memory Backend for testing.
// Directories are implied by the files stored below them.
type MemoryBackend struct {
	mu        sync.RWMutex
	files     map[string]string
	documents map[string]*notebook.Document
	calls     MemoryCalls
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	Stat  int
	Read  int
	Write int
}

// NewMemoryBackend creates a backend seeded with files (path -> content).
func NewMemoryBackend(files map[string]string) *MemoryBackend {
	m := &MemoryBackend{
		files:     make(map[string]string, len(files)),
		documents: make(map[string]*notebook.Document),
	}
	for p, content := range files {
		m.files[path.Clean(p)] = content
	}
	return m
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Stat(_ context.Context, p string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Stat++

	clean := path.Clean(p)
	if content, ok := m.files[clean]; ok {
		return Info{Path: p, Size: int64(len(content))}, nil
	}
	if _, ok := m.documents[clean]; ok {
		return Info{Path: p}, nil
	}
	prefix := strings.TrimSuffix(clean, "/") + "/"
	for f := range m.files {
		if strings.HasPrefix(f, prefix) || clean == "/" {
			return Info{Path: p, IsDir: true}, nil
		}
	}
	return Info{}, cerrors.ResourceNotFound(p, nil)
}

func (m *MemoryBackend) ReadText(_ context.Context, p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Read++

	content, ok := m.files[path.Clean(p)]
	if !ok {
		return "", cerrors.ResourceNotFound(p, nil)
	}
	return content, nil
}

func (m *MemoryBackend) WriteDocument(_ context.Context, p string, doc *notebook.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Write++

	m.documents[path.Clean(p)] = doc
	return nil
}

// SetFile replaces the content of a stored file.
func (m *MemoryBackend) SetFile(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(p)] = content
}

// Document returns a written notebook.
func (m *MemoryBackend) Document(p string) (*notebook.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[path.Clean(p)]
	return doc, ok
}

// Documents lists written notebook paths in sorted order.
func (m *MemoryBackend) Documents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.documents))
	for p := range m.documents {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Calls returns a snapshot of the call counters.
func (m *MemoryBackend) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
