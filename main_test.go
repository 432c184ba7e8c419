package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportCatalogThenStatus(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("CATALOG_PATH", filepath.Join(dir, "syllabi.json"))
	t.Setenv("PROGRESS_PATH", filepath.Join(dir, "progress.json"))

	source := filepath.Join(dir, "import.json")
	require.NoError(t, os.WriteFile(source, []byte(`{
    "current_field": "Math",
    "syllabi": {"Math": {"tasks": ["Algebra", "Geometry"]}}
}`), 0o644))

	out, err := runCLI(t, "import-catalog", source)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 syllabi")

	out, err = runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Math: 0/2 tasks (0.0%), week 1")
	assert.Contains(t, out, "interval: 7 days, reminders: on")
}

func TestStatusWithoutActiveSyllabus(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("CATALOG_PATH", filepath.Join(dir, "syllabi.json"))
	t.Setenv("PROGRESS_PATH", filepath.Join(dir, "progress.json"))

	_, err := runCLI(t, "status")
	assert.Error(t, err)
}
