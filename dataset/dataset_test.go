package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestListFiles_OnlyCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "x\n1\n")
	writeFile(t, dir, "b.csv", "x\n1\n")
	writeFile(t, dir, "notes.txt", "hello")
	writeFile(t, dir, "c.csv.bak", "x\n1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.csv"), 0o755))

	files, err := ListFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, files)
}

func TestListFiles_MissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "x\n1\n")

	p, err := Resolve(dir, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.csv"), p)

	for _, name := range []string{"", "../a.csv", "b.csv", "a.txt", "sub/a.csv"} {
		_, err := Resolve(dir, name)
		assert.True(t, errors.Is(err, ErrNotListed), "name %q: %v", name, err)
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "health.csv", "age,weight,sex\n30,70.5,F\n41,,M\n")

	tbl, err := LoadTable(p)
	require.NoError(t, err)
	assert.Equal(t, "health.csv", tbl.Name)
	assert.Equal(t, []string{"age", "weight", "sex"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())

	weight, err := tbl.Column("weight")
	require.NoError(t, err)
	assert.True(t, weight[0].Numeric)
	assert.Equal(t, 70.5, weight[0].Num)
	assert.True(t, weight[1].Missing())

	sex, err := tbl.Column("sex")
	require.NoError(t, err)
	assert.False(t, sex[0].Numeric)
	assert.Equal(t, "F", sex[0].Raw)

	_, err = tbl.Column("height")
	assert.True(t, errors.Is(err, ErrUnknownColumn))

	assert.Len(t, tbl.Head(5), 2)
	assert.Len(t, tbl.Head(1), 1)
}

func TestLoadTable_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"ragged", "a,b\n1,2\n3\n"},
		{"bad quote", "a,b\n\"1,2\n"},
		{"duplicate header", "a,a\n1,2\n"},
		{"blank header", "a,\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "bad.csv", tt.content)
			_, err := LoadTable(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "got %v", err)
		})
	}
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "gone.csv"))
	assert.True(t, errors.Is(err, ErrParse))
}

func TestRead_HeaderOnly(t *testing.T) {
	tbl, err := Read("h.csv", strings.NewReader("\ufeffx,y\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Columns)
	assert.Equal(t, 0, tbl.Len())
}
