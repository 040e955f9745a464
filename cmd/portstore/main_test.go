package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (sb *syncBuffer) Write(p []byte) (int, error) {
	sb.lock.Lock()
	defer sb.lock.Unlock()

	return sb.buf.Write(p)
}

func (sb *syncBuffer) String() string {
	sb.lock.Lock()
	defer sb.lock.Unlock()

	return sb.buf.String()
}

// runCLI runs the CLI against the store in dataRoot and returns its output.
func runCLI(t *testing.T, dataRoot string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := run(append([]string{"--data", dataRoot, "--store", "crew"}, args...), &out, io.Discard)
	return out.String(), err
}

func mustRunCLI(t *testing.T, dataRoot string, args ...string) string {
	t.Helper()

	out, err := runCLI(t, dataRoot, args...)
	require.NoError(t, err, "portstore %s", strings.Join(args, " "))
	return out
}

func TestCommands(t *testing.T) { //nolint:paralleltest // The log package is global.
	data := t.TempDir()

	out := mustRunCLI(t, data, "create", "Jeffrey Sinclair", "--profession", "Commander", "--organization", "Babylon 5")
	assert.Contains(t, out, "created Jeffrey Sinclair")
	mustRunCLI(t, data, "create", "Suzan Ivanova", "--organization", "Babylon 5")
	mustRunCLI(t, data, "create", "Londo Mollari", "--organization", "Centauri Republic")

	out = mustRunCLI(t, data, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Jeffrey Sinclair")
	assert.Contains(t, lines[2], "Londo Mollari")
	assert.Contains(t, lines[3], "Suzan Ivanova")

	out = mustRunCLI(t, data, "list", "--organization", "Babylon 5", "--limit", "1")
	assert.Contains(t, out, "Jeffrey Sinclair")
	assert.NotContains(t, out, "Suzan Ivanova")

	mustRunCLI(t, data, "rename", "Jeffrey Sinclair", "John Sheridan")
	_, err := runCLI(t, data, "get", "Jeffrey Sinclair")
	require.Error(t, err)
	out = mustRunCLI(t, data, "get", "John Sheridan")
	assert.Contains(t, out, "Commander")

	mustRunCLI(t, data, "delete", "Londo Mollari")
	_, err = runCLI(t, data, "delete", "Londo Mollari")
	require.Error(t, err)

	out = mustRunCLI(t, data, "truncate")
	assert.Contains(t, out, "deleted 2 persons")
	out = mustRunCLI(t, data, "list")
	assert.Equal(t, 1, strings.Count(out, "\n"), "only the header is left")
}

func TestImport(t *testing.T) { //nolint:paralleltest // The log package is global.
	data := t.TempDir()
	file := filepath.Join(t.TempDir(), "crew.txt")
	require.NoError(t, os.WriteFile(file, []byte(`# Babylon 5 command staff
John Sheridan;Captain;EarthForce
Susan Ivanova;Commander;EarthForce;Who am I?

Michael Garibaldi;Security Chief
Stephen Franklin
`), 0o600))

	out := mustRunCLI(t, data, "import", file, "--workers", "2")
	assert.Contains(t, out, "imported 4 persons")

	out = mustRunCLI(t, data, "get", "Susan Ivanova")
	assert.Contains(t, out, "Who am I?")

	broken := filepath.Join(t.TempDir(), "broken.txt")
	require.NoError(t, os.WriteFile(broken, []byte(";no name\n"), 0o600))
	_, err := runCLI(t, data, "import", broken)
	require.Error(t, err)
}

func TestMemoryAndMetrics(t *testing.T) { //nolint:paralleltest // The log package is global.
	var stdout bytes.Buffer
	stderr := &syncBuffer{}
	require.NoError(t, run([]string{"--memory", "--metrics", "create", "Vir Cotto"}, &stdout, stderr))
	assert.Contains(t, stdout.String(), "created Vir Cotto")
	assert.Contains(t, stderr.String(), `portstore_writes_total{store="portstore",op="create"} 1`)

	// Nothing persists between runs of an in-memory store.
	stdout.Reset()
	require.NoError(t, run([]string{"--memory", "list"}, &stdout, io.Discard))
	assert.NotContains(t, stdout.String(), "Vir Cotto")
}
