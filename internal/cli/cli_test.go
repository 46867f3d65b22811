package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlstore"
)

type harness struct {
	t    *testing.T
	base []string
}

func newHarness(t *testing.T, backend, file string) *harness {
	t.Helper()
	for _, k := range []string{"TADA_STORAGE", "TADA_PATH", "TADA_DSN", "TADA_THEME", "TADA_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	return &harness{t: t, base: []string{
		"--config", filepath.Join(dir, "tada.yaml"),
		"--storage", backend,
		"--path", filepath.Join(dir, file),
		"--theme", "mono",
	}}
}

func (h *harness) run(args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code = Run(append(append([]string{}, h.base...), args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

var idRe = regexp.MustCompile(`added (\S+)`)

func (h *harness) add(title string) string {
	h.t.Helper()
	code, out, errOut := h.run("add", title)
	require.Equal(h.t, 0, code, errOut)
	m := idRe.FindStringSubmatch(out)
	require.Len(h.t, m, 2, out)
	return m[1]
}

func TestCLI_Flow(t *testing.T) {
	h := newHarness(t, "file", "tada.json")

	milk := h.add("buy milk")
	h.add("walk the dog")

	code, out, _ := h.run("ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "walk the dog")
	assert.Contains(t, out, "Total 2")

	code, out, _ = h.run("done", milk)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "toggled")

	code, _, _ = h.run("edit", "1", "buy", "oat", "milk")
	require.Equal(t, 0, code)

	code, out, _ = h.run("ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "buy oat milk")
	assert.Contains(t, out, "x 1  - 1")

	code, out, _ = h.run("clear")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "cleared 1")

	code, _, _ = h.run("rm", "1")
	require.Equal(t, 0, code)

	code, out, _ = h.run("ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "no items")
}

func TestCLI_GroupedList(t *testing.T) {
	h := newHarness(t, "file", "tada.json")
	h.add("first")
	h.add("second")
	code, _, _ := h.run("done", "2")
	require.Equal(t, 0, code)

	code, out, _ := h.run("--group", "ls")
	require.Equal(t, 0, code)

	pending := strings.Index(out, "Pending")
	done := strings.Index(out, "Done")
	require.True(t, pending >= 0 && done > pending, out)
	assert.Greater(t, strings.Index(out, "second"), done)
	assert.Less(t, strings.Index(out, "first"), done)
}

func TestCLI_PersistsInSlotFormat(t *testing.T) {
	h := newHarness(t, "file", "tada.json")
	h.add("buy milk")

	slot := jsonstore.New(h.base[5])
	raw, ok, err := slot.Get(store.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^\[\{"id":"[0-9a-f-]{36}","title":"buy milk","done":false\}\]$`, raw)
}

func TestCLI_SQLiteBackend(t *testing.T) {
	h := newHarness(t, "sqlite", "tada.db")
	id := h.add("persisted in sqlite")

	code, out, _ := h.run("ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "persisted in sqlite")
	assert.Contains(t, out, shortID(id))
}

func TestCLI_UsageErrors(t *testing.T) {
	h := newHarness(t, "file", "tada.json")
	h.add("only one")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, ""},
		{"add without title", []string{"add"}, "usage: todo add"},
		{"add blank title", []string{"add", "   "}, "empty title"},
		{"done without id", []string{"done"}, "usage: todo done"},
		{"index out of range", []string{"done", "5"}, "index out of range: have 1, got 5"},
		{"unknown id", []string{"rm", "zzzz"}, "no such todo: zzzz"},
		{"unknown flag", []string{"--nope", "ls"}, "unknown flag"},
		{"unknown backend", []string{"--storage", "redis", "ls"}, "unknown storage backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := h.run(tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestCLI_UnknownSubcommand(t *testing.T) {
	h := newHarness(t, "file", "tada.json")
	code, _, errOut := h.run("frobnicate")
	assert.NotEqual(t, 0, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestCLI_MalformedDataFails(t *testing.T) {
	h := newHarness(t, "file", "tada.json")
	require.NoError(t, jsonstore.New(h.base[5]).Set(store.Key, `{"not":"a list"}`))

	code, _, errOut := h.run("ls")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "malformed todo data")

	raw, _, err := jsonstore.New(h.base[5]).Get(store.Key)
	require.NoError(t, err)
	assert.Equal(t, `{"not":"a list"}`, raw, "stored value left for inspection")
}

func TestResolve(t *testing.T) {
	slot, err := sqlstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer slot.Close()

	s := store.New(slot, store.WithIDs(func() func() string {
		ids := []string{"abc111", "abc222", "def333"}
		i := 0
		return func() string { i++; return ids[i-1] }
	}()))
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Add(title)
		require.NoError(t, err)
	}

	got, err := resolve(s, "abc222")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)

	got, err = resolve(s, "3")
	require.NoError(t, err)
	assert.Equal(t, "c", got.Title)

	got, err = resolve(s, "de")
	require.NoError(t, err)
	assert.Equal(t, "c", got.Title)

	_, err = resolve(s, "abc")
	assert.ErrorContains(t, err, "ambiguous")
	assert.Equal(t, 2, exitCode(err))

	_, err = resolve(s, "")
	assert.ErrorContains(t, err, "no such todo")
}

func TestCLI_InitWritesConfig(t *testing.T) {
	h := newHarness(t, "file", "tada.json")
	cfgPath := h.base[1]

	code, out, errOut := h.run("--group", "init")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "wrote "+cfgPath)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
	assert.Equal(t, h.base[5], cfg.Storage.Path)
	assert.Equal(t, "mono", cfg.UI.Theme)
	assert.True(t, cfg.UI.Group)

	code, _, errOut = h.run("init")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "already exists")

	code, _, errOut = h.run("init", "--force")
	assert.Equal(t, 0, code, errOut)
}

func TestOpenSlot_FileDefaultsToWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	slot, err := openSlot(config.StorageConfig{Backend: config.BackendFile})
	require.NoError(t, err)
	require.NoError(t, slot.Set(store.Key, "[]"))

	want, err := jsonstore.DefaultPath()
	require.NoError(t, err)
	raw, ok, err := jsonstore.New(want).Get(store.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("12345678-aaaa"))
	assert.Equal(t, "abc", shortID("abc"))
}
