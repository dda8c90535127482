package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dockbook/internal/config"
	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

const sampleDockerfile = "#md # Build\n#md See [Alpine](https://alpinelinux.org).\n\nFROM alpine\n\nRUN apk add curl\n\n"

type cliEnv struct {
	dir     string
	out     *bytes.Buffer
	started [][]string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	testChdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte(sampleDockerfile), 0o600))
	return &cliEnv{dir: dir, out: &bytes.Buffer{}}
}

func (e *cliEnv) run(args ...string) error {
	e.out.Reset()
	g := &Global{
		Context: context.Background(),
		Out:     e.out,
		Err:     io.Discard,
		ViewerStart: func(name string, args ...string) error {
			e.started = append(e.started, append([]string{name}, args...))
			return nil
		},
	}
	return Execute(g, &CLI{}, args, func(int) {})
}

func (e *cliEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, config.DefaultPath), []byte(content), 0o600))
}

func readNotebook(t *testing.T, path string) *notebook.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := notebook.Decode(f)
	require.NoError(t, err)
	return doc
}

func TestConvert_WritesNotebook(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("convert", "Dockerfile"))
	assert.Equal(t, "Wrote Dockerfile.ipynb (3 cells: 2 code, 1 markdown)\n", env.out.String())

	doc := readNotebook(t, filepath.Join(env.dir, "Dockerfile.ipynb"))
	require.Len(t, doc.Cells, 3)
	assert.Equal(t, notebook.CellTypeMarkdown, doc.Cells[0].CellType)
	assert.Equal(t, []string{"FROM alpine"}, doc.Cells[1].Source)
	assert.Empty(t, env.started, "viewer is disabled by default")
}

func TestConvert_Stdout(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("convert", "--stdout", "Dockerfile"))

	doc, err := notebook.Decode(strings.NewReader(env.out.String()))
	require.NoError(t, err)
	assert.Len(t, doc.Cells, 3)
	assert.NoFileExists(t, filepath.Join(env.dir, "Dockerfile.ipynb"))
}

func TestConvert_DryRun(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("convert", "--dry-run", "Dockerfile"))
	assert.Contains(t, env.out.String(), "Would write Dockerfile.ipynb")
	assert.NoFileExists(t, filepath.Join(env.dir, "Dockerfile.ipynb"))
}

func TestConvert_Errors(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.Mkdir(filepath.Join(env.dir, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "notes.txt"), []byte("hi"), 0o600))

	tests := []struct {
		name     string
		args     []string
		category cerrors.ErrorCategory
	}{
		{name: "missing file", args: []string{"convert", "nope/Dockerfile"}, category: cerrors.CategoryNotFound},
		{name: "directory", args: []string{"convert", "sub"}, category: cerrors.CategoryInvalidInput},
		{name: "wrong extension", args: []string{"convert", "notes.txt"}, category: cerrors.CategoryInvalidInput},
		{name: "unknown backend", args: []string{"convert", "--backend", "s3", "Dockerfile"}, category: cerrors.CategoryInvalidInput},
		{name: "open and no-open", args: []string{"convert", "--open", "--no-open", "Dockerfile"}, category: cerrors.CategoryInvalidInput},
		{name: "missing explicit config", args: []string{"-c", "other.yaml", "convert", "Dockerfile"}, category: cerrors.CategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.run(tt.args...)
			require.Error(t, err)
			assert.True(t, cerrors.IsCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestConvert_OpenViewer(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("convert", "--open", "Dockerfile"))
	require.Len(t, env.started, 1)
	assert.Equal(t, []string{"jupyter", "lab", "Dockerfile.ipynb"}, env.started[0])
}

func TestConvert_ViewerEnabledByConfig(t *testing.T) {
	env := newCLIEnv(t)
	env.writeConfig(t, "viewer:\n  enabled: true\n  command: [code, \"{path}\"]\n")

	require.NoError(t, env.run("convert", "Dockerfile"))
	require.Len(t, env.started, 1)
	assert.Equal(t, []string{"code", "Dockerfile.ipynb"}, env.started[0])

	require.NoError(t, env.run("convert", "--no-open", "Dockerfile"))
	assert.Len(t, env.started, 1)
}

func TestConvert_CompactOutput(t *testing.T) {
	env := newCLIEnv(t)
	env.writeConfig(t, "output:\n  compact: true\n")

	require.NoError(t, env.run("convert", "Dockerfile"))
	data, err := os.ReadFile(filepath.Join(env.dir, "Dockerfile.ipynb"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

type contentsServer struct {
	mu    sync.Mutex
	saved map[string]string
}

func (s *contentsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := strings.TrimPrefix(r.URL.Path, "/api/contents/")
	switch r.Method {
	case http.MethodGet:
		if p != "work/Dockerfile" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "Dockerfile", "path": p, "type": "file", "format": "text", "content": sampleDockerfile,
		})
	case http.MethodPut:
		var body struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.saved[p] = body.Content
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"type":"file"}`)
	}
}

func TestConvert_JupyterBackend(t *testing.T) {
	env := newCLIEnv(t)
	srv := &contentsServer{saved: map[string]string{}}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	env.writeConfig(t, "jupyter:\n  base_url: "+ts.URL+"\n  token: secret\n")

	require.NoError(t, env.run("convert", "--backend", "jupyter", "--open", "work/Dockerfile"))

	srv.mu.Lock()
	content, ok := srv.saved["work/Dockerfile.ipynb"]
	srv.mu.Unlock()
	require.True(t, ok)
	doc, err := notebook.Decode(strings.NewReader(content))
	require.NoError(t, err)
	assert.Len(t, doc.Cells, 3)

	require.Len(t, env.started, 1)
	treeURL := ts.URL + "/lab/tree/work/Dockerfile.ipynb?token=secret"
	want := make([]string, 0, 3)
	for _, arg := range config.BrowserCommand(runtime.GOOS) {
		want = append(want, strings.ReplaceAll(arg, "{url}", treeURL))
	}
	assert.Equal(t, want, env.started[0])
}

func TestConvert_MetricsTextfile(t *testing.T) {
	env := newCLIEnv(t)
	promFile := filepath.Join(env.dir, "dockbook.prom")
	env.writeConfig(t, "metrics:\n  textfile: "+promFile+"\n")

	require.NoError(t, env.run("convert", "Dockerfile"))

	data, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dockbook_conversions_total{outcome="success"} 1`)
	assert.Contains(t, string(data), `dockbook_cells_total{kind="code"} 2`)
}

func TestInspect_JSON(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("inspect", "--format", "json", "Dockerfile"))

	var report Report
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &report))
	assert.Equal(t, "Dockerfile", report.Source)
	assert.Equal(t, 2, report.CodeCells)
	assert.Equal(t, 1, report.MarkdownCells)
	require.Len(t, report.Cells, 3)
	assert.Equal(t, "# Build", report.Cells[0].FirstLine)
	assert.Equal(t, 2, report.Cells[0].Lines)
	require.Len(t, report.Cells[0].Headings, 1)
	assert.Equal(t, "Build", report.Cells[0].Headings[0].Text)
	require.Len(t, report.Cells[0].Links, 1)
	assert.Equal(t, "https://alpinelinux.org", report.Cells[0].Links[0].Destination)
	assert.Empty(t, report.Cells[1].Headings)

	assert.NoFileExists(t, filepath.Join(env.dir, "Dockerfile.ipynb"))
}

func TestInspect_Text(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("inspect", "Dockerfile"))
	out := env.out.String()
	assert.Contains(t, out, "Dockerfile -> Dockerfile.ipynb: 3 cells (2 code, 1 markdown)")
	assert.Contains(t, out, "[0] markdown")
	assert.Contains(t, out, "# Build")
	assert.Contains(t, out, "[2] code")
	assert.Contains(t, out, "RUN apk add curl")
}

func TestWatch_RequiresFSBackend(t *testing.T) {
	env := newCLIEnv(t)
	env.writeConfig(t, "backend: jupyter\n")

	err := env.run("watch", "Dockerfile")
	require.Error(t, err)
	assert.True(t, cerrors.IsCategory(err, cerrors.CategoryConfig))
}

func TestInit(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, env.run("init"))
	assert.Contains(t, env.out.String(), "initialized successfully")

	cfg, err := config.Load(filepath.Join(env.dir, config.DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, config.BackendFS, cfg.Backend)

	require.Error(t, env.run("init"))
	require.NoError(t, env.run("init", "--force"))
}

func TestVersionFlag(t *testing.T) {
	env := newCLIEnv(t)
	code := -1
	g := &Global{Out: env.out, Err: io.Discard}
	_ = Execute(g, &CLI{}, []string{"--version"}, func(c int) {
		if code == -1 {
			code = c
		}
	})
	assert.Equal(t, 0, code)
	assert.Contains(t, env.out.String(), "dockbook")
}
