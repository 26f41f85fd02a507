// Package dataset lists the CSV files of the data directory and loads them
// into in-memory tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const Extension = ".csv"

var (
	ErrParse         = errors.New("malformed dataset")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotListed     = errors.New("file is not an available dataset")
)

// Value is one cell. Num is only meaningful when Numeric is set.
type Value struct {
	Raw     string
	Num     float64
	Numeric bool
}

// Missing reports whether the cell was empty in the source file.
func (v Value) Missing() bool {
	return v.Raw == ""
}

func parseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Value{Raw: s, Num: f, Numeric: true}
	}
	return Value{Raw: s}
}

type Table struct {
	Name    string
	Columns []string
	Rows    [][]Value
	index   map[string]int
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the cells of the named column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]Value, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) [][]Value {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// NewTable builds a table from a header and raw string rows.
func NewTable(name string, columns []string, records [][]string) (*Table, error) {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		if c == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrParse, i+1)
		}
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrParse, c)
		}
		t.Columns[i] = c
		t.index[c] = i
	}

	t.Rows = make([][]Value, 0, len(records))
	for r, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrParse, r+2, len(rec), len(columns))
		}
		row := make([]Value, len(rec))
		for i, raw := range rec {
			row[i] = parseValue(raw)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ListFiles returns the names of the CSV files in dir, in directory order.
func ListFiles(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// Resolve maps a selected filename to its path, accepting only names that
// ListFiles would return.
func Resolve(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, Extension) {
		return "", fmt.Errorf("%w: %q", ErrNotListed, name)
	}
	files, err := ListFiles(dir)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f == name {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotListed, name)
}

func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	t, err := Read(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Read parses comma-separated data with a header row.
func Read(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", ErrParse)
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return NewTable(name, header, records)
}
