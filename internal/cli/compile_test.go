package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlmap/internal/store"
)

var testSpecsDir = filepath.Join("testdata", "specs")

func TestCompileValidSpecs(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 2 table(s), 2 model(s)")
	assert.Contains(t, output, "  users: app.users, 6 column(s)")
	assert.Contains(t, output, "  page_views: app.page_views, 3 column(s)")
	assert.Contains(t, output, "  User → users: 6 property(ies)")
	assert.Contains(t, output, "  PageView → page_views: 3 property(ies)")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Tables []map[string]any `json:"tables"`
			Models []map[string]any `json:"models"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Tables, 2)
	assert.Equal(t, "users", resp.Data.Tables[0]["name"])
	assert.Equal(t, "app", resp.Data.Tables[0]["keyspace"])
	assert.Len(t, resp.Data.Models, 2)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wrote compiled mappings to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result["tables"], 2)
	assert.Len(t, result["models"], 2)
	assert.NotContains(t, result, "catalog")
}

func TestCompileRecordsCatalog(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog.db")

	output, err := executeRoot(t, "compile", testSpecsDir, "--catalog", catalog)
	require.NoError(t, err)
	// User: find, update, remove, insert. PageView (counter): no insert.
	assert.Contains(t, output, "Recorded 7 statement(s) in "+catalog)

	st, err := store.Open(catalog)
	require.NoError(t, err)
	defer st.Close()

	entries, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 7)

	counters := 0
	for _, e := range entries {
		assert.Equal(t, "app", e.Keyspace)
		if e.IsCounter {
			counters++
			assert.Equal(t, "PageView", e.Model)
			assert.False(t, e.Idempotent)
		}
	}
	assert.Equal(t, 1, counters)
}

func TestCompileCatalogFromConfig(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "from-config.db")
	cfgFile := writeConfig(t, dir, "catalog: "+catalog+"\n")

	output, err := executeRoot(t, "--config", cfgFile, "--format", "json", "compile", testSpecsDir)
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Catalog int `json:"catalog"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, 7, resp.Data.Catalog)
	assert.FileExists(t, catalog)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, buf.String(), "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestCompileNoDefinitions(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "empty.cue"), []byte("package app\n\nother: 1\n"), 0644))

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no tables or models found in specs")
}

func TestCompileInvalidSpec(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "broken")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed with 2 error(s)")

	output := buf.String()
	assert.Contains(t, output, "✗ Compilation failed")
	assert.Contains(t, output, "E010: table.users: keyspace is required")
	assert.Contains(t, output, `E013: model.Order: unknown table "orders"`)
}

func TestCompileInvalidSpecJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "broken")})

	err := cmd.Execute()
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Error  *CLIError  `json:"error"`
		Data   []CLIError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeKeyspace, resp.Error.Code)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, ErrCodeTableRef, resp.Data[1].Code)
}

func TestCompileVerboseOutput(t *testing.T) {
	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf) // Verbose output goes to stderr
	cmd.SetArgs([]string{testSpecsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	verboseOutput := stderrBuf.String()
	assert.Contains(t, verboseOutput, "Found 1 CUE file(s)")
	assert.Contains(t, verboseOutput, "Compiled table: users")
	assert.Contains(t, verboseOutput, "Compiled model: PageView")
	assert.NotContains(t, stdoutBuf.String(), "Compiled table:")
}

func TestFindCUEFiles(t *testing.T) {
	tmpDir := t.TempDir()

	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.cue"), []byte("package app"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notcue.txt"), []byte("not a cue file"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "nested.cue"), []byte("package app"), 0644))

	files, err := FindCUEFiles(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "root.cue")}, files)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"keyspace", ErrCodeKeyspace},
		{"columns", ErrCodeColumns},
		{"columns.id", ErrCodeColumns},
		{"partition_key", ErrCodeKey},
		{"clustering_key", ErrCodeKey},
		{"table", ErrCodeTableRef},
		{"properties", ErrCodeProperties},
		{"properties.convert", ErrCodeProperties},
		{"property", ErrCodeProperties},
		{"cue", ErrCodeCUE},
		{"unknown", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapFieldToErrorCode(tt.field))
		})
	}
}
