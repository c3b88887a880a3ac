package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format identifies a supported ingestion format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
)

// FormatForPath maps a file extension to a Format.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	case ".txt":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// LoadFile reads a dataset from disk, picking the format from the extension.
// The table name is the file base name without extension.
func LoadFile(path string) (*Table, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(name, f, format)
}

// Load reads a dataset in the given format. The first record of delimited
// input is treated as the header row.
func Load(name string, r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return loadDelimited(name, r, ',')
	case FormatTSV:
		return loadDelimited(name, r, '\t')
	case FormatJSON:
		return loadJSON(name, r)
	case FormatTXT:
		return loadTXT(name, r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func loadDelimited(name string, r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited data: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %q needs a header row and at least one data row", name)
	}

	header := records[0]
	rows := make([][]Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		// Rows shorter than the header are padded with missing cells;
		// longer ones are dropped as malformed.
		if len(rec) > len(header) {
			continue
		}
		row := make([]Value, len(header))
		for i := range rec {
			row[i] = rec[i]
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %q has no usable data rows", name)
	}
	return FromRecords(name, header, rows)
}

func loadJSON(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch v := root.(type) {
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("dataset %q: JSON array is empty", name)
		}
		return tableFromObjects(name, v)
	case map[string]any:
		// An object wrapping an array of records, e.g. {"items": [...]}.
		for _, value := range v {
			arr, ok := value.([]any)
			if !ok || len(arr) == 0 {
				continue
			}
			if _, ok := arr[0].(map[string]any); ok {
				return tableFromObjects(name, arr)
			}
		}
		// A flat object becomes a single-row table.
		return tableFromObjects(name, []any{root})
	default:
		return nil, fmt.Errorf("dataset %q: JSON must be an array or object", name)
	}
}

func tableFromObjects(name string, items []any) (*Table, error) {
	var header []string
	seen := make(map[string]bool)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("dataset %q: JSON array elements must be objects", name)
		}
		for key := range obj {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}
	// Map iteration order is random; keep the header deterministic.
	sort.Strings(header)

	rows := make([][]Value, len(items))
	for i, item := range items {
		obj := item.(map[string]any)
		row := make([]Value, len(header))
		for c, key := range header {
			if v, ok := obj[key]; ok {
				row[c] = flattenJSONValue(v)
			}
		}
		rows[i] = row
	}
	return FromRecords(name, header, rows)
}

// flattenJSONValue keeps scalars and stringifies nested structures so a cell
// is always a scalar.
func flattenJSONValue(v any) Value {
	switch v.(type) {
	case nil, bool, float64, string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// txtSeparators are the candidate delimiters probed for TXT input, in
// preference order for ties.
var txtSeparators = []rune{',', '\t', ';', '|', ' '}

const txtSampleLines = 10

func loadTXT(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(string(data))
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("dataset %q: TXT content is too short to parse as a table", name)
	}
	sep := DetectDelimiter(lines)
	return loadDelimited(name, strings.NewReader(content), sep)
}

// DetectDelimiter probes candidate separators against a sample of lines and
// picks the one that splits the most lines into the same column count, with
// that count above one. Falls back to comma.
func DetectDelimiter(lines []string) rune {
	sample := lines
	if len(sample) > txtSampleLines {
		sample = sample[:txtSampleLines]
	}

	best := ','
	bestConsistency := 0
	for _, sep := range txtSeparators {
		var counts []int
		for _, line := range sample {
			if strings.TrimSpace(line) == "" {
				continue
			}
			counts = append(counts, len(strings.Split(line, string(sep))))
		}
		if len(counts) == 0 {
			continue
		}

		freq := make(map[int]int)
		for _, c := range counts {
			freq[c]++
		}
		commonCols, consistency := 0, 0
		for cols, n := range freq {
			if n > consistency || (n == consistency && cols > commonCols) {
				commonCols, consistency = cols, n
			}
		}
		if commonCols > 1 && consistency > bestConsistency {
			best = sep
			bestConsistency = consistency
		}
	}
	return best
}

// LoadDir loads every supported file in a directory into a map keyed by
// table name. Unsupported and unreadable files are skipped.
func LoadDir(dir string) (map[string]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	tables := make(map[string]*Table)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := FormatForPath(path); err != nil {
			continue
		}
		t, err := LoadFile(path)
		if err != nil {
			continue
		}
		tables[t.Name()] = t
	}
	return tables, nil
}
