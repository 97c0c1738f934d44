package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

const handlerSource = `package app

// Handler serves requests
type Handler struct{}

func (h *Handler) Send(to string) error { return nil }
`

func TestFileReader_ParseGoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handler.go")
	writeFile(t, path, handlerSource)

	reader := NewFileReader()
	first, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.Equal(t, "app", first.Name.Name)
	assert.NotEmpty(t, first.Comments)

	second, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	stats := reader.GetCacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(1), stats.Hits)

	loc := reader.Position(first.Name.Pos())
	assert.Equal(t, path, loc.File)
	assert.Equal(t, 1, loc.Line)
}

func TestFileReader_ParseGoFile_Errors(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.ParseGoFile("")
	assert.True(t, siggserrors.HasCode(err, siggserrors.FileSystemErrorCode))

	_, err = reader.ParseGoFile(filepath.Join(t.TempDir(), "missing.go"))
	assert.True(t, siggserrors.HasCode(err, siggserrors.FileSystemErrorCode))

	broken := filepath.Join(t.TempDir(), "broken.go")
	writeFile(t, broken, "package app\n\nfunc {")
	_, err = reader.ParseGoFile(broken)
	assert.True(t, siggserrors.HasCode(err, siggserrors.SyntaxErrorCode))
	assert.Equal(t, 0, reader.GetCacheStats().Size)
}

func TestFileReader_ParseGoSource(t *testing.T) {
	reader := NewFileReader()

	file, err := reader.ParseGoSource("inline.go", handlerSource)
	require.NoError(t, err)
	assert.Len(t, file.Decls, 2)

	_, err = reader.ParseGoSource("inline.go", "not go")
	assert.Error(t, err)
}

func TestFileReader_GoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.go"), "package app\n")
	writeFile(t, filepath.Join(dir, "a.go"), "package app\n")
	writeFile(t, filepath.Join(dir, "a_test.go"), "package app\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.go"), "package sub\n")

	files, err := NewFileReader().GoFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.go"), filepath.Join(dir, "b.go")}, files)

	_, err = NewFileReader().GoFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
