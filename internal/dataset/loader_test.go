package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]Format{
		"sales.csv":      FormatCSV,
		"sales.TSV":      FormatTSV,
		"dir/sales.json": FormatJSON,
		"notes.txt":      FormatTXT,
	} {
		got, err := FormatForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatForPath("report.xlsx")
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	table, err := Load("sales", strings.NewReader(
		"region,units\nEast,10\nWest,20\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "units"}, table.ColumnNames())
	assert.Equal(t, []Value{"East", int64(10)}, table.Row(0))
}

func TestLoadCSVRaggedRows(t *testing.T) {
	// Short rows pad with missing cells, long rows are dropped.
	table, err := Load("sales", strings.NewReader(
		"a,b\n1,2\n3\n4,5,6\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
	assert.Nil(t, table.Row(1)[1])
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	_, err := Load("empty", strings.NewReader("a,b\n"), FormatCSV)
	assert.Error(t, err)
}

func TestLoadTSV(t *testing.T) {
	table, err := Load("sales", strings.NewReader(
		"region\tunits\nEast\t10\n"), FormatTSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "units"}, table.ColumnNames())
}

func TestLoadJSONArray(t *testing.T) {
	table, err := Load("sales", strings.NewReader(
		`[{"region":"East","units":10},{"region":"West","units":20}]`), FormatJSON)
	require.NoError(t, err)
	// Headers come out sorted for determinism.
	assert.Equal(t, []string{"region", "units"}, table.ColumnNames())
	assert.Equal(t, []string{"string", "int"}, table.DTypes())
	assert.Equal(t, 2, table.NumRows())
}

func TestLoadJSONWrappedArray(t *testing.T) {
	table, err := Load("sales", strings.NewReader(
		`{"items":[{"region":"East","units":10}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
	assert.Equal(t, []string{"region", "units"}, table.ColumnNames())
}

func TestLoadJSONFlatObject(t *testing.T) {
	table, err := Load("config", strings.NewReader(
		`{"name":"prod","replicas":3}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
	assert.Equal(t, []string{"name", "replicas"}, table.ColumnNames())
}

func TestLoadJSONNestedValuesFlatten(t *testing.T) {
	table, err := Load("sales", strings.NewReader(
		`[{"region":"East","tags":["a","b"]}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, table.Row(0)[1])
}

func TestLoadJSONInvalid(t *testing.T) {
	_, err := Load("bad", strings.NewReader(`{"broken":`), FormatJSON)
	assert.Error(t, err)

	_, err = Load("scalar", strings.NewReader(`42`), FormatJSON)
	assert.Error(t, err)
}

func TestLoadTXTDetectsDelimiter(t *testing.T) {
	table, err := Load("sales", strings.NewReader(
		"region|units\nEast|10\nWest|20\n"), FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "units"}, table.ColumnNames())
	assert.Equal(t, 2, table.NumRows())
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ',', DetectDelimiter([]string{"a,b,c", "1,2,3"}))
	assert.Equal(t, '\t', DetectDelimiter([]string{"a\tb", "1\t2"}))
	assert.Equal(t, ';', DetectDelimiter([]string{"a;b", "1;2", "3;4"}))
	// No separator splits consistently into more than one column.
	assert.Equal(t, ',', DetectDelimiter([]string{"justoneword", "another"}))
}

func TestLoadFileAndLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"),
		[]byte("region,units\nEast,10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"),
		[]byte(`[{"name":"ada"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.bin"),
		[]byte{0x00}, 0o644))

	table, err := LoadFile(filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)
	assert.Equal(t, "sales", table.Name())

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
	assert.Contains(t, tables, "sales")
	assert.Contains(t, tables, "users")
}
