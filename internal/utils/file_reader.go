package utils

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// FileReader parses Go source files, caching each AST for the life of the reader
type FileReader struct {
	fileSet  *token.FileSet
	astCache *Cache[*ast.File]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		fileSet:  token.NewFileSet(),
		astCache: NewCache[*ast.File](),
	}
}

// ParseGoFile parses a Go source file and returns the AST with caching
func (fr *FileReader) ParseGoFile(filePath string) (*ast.File, error) {
	cleanPath, err := validateAndCleanPath(filePath)
	if err != nil {
		return nil, err
	}

	return fr.astCache.GetOrCreate(cleanPath, func() (*ast.File, error) {
		file, err := parser.ParseFile(fr.fileSet, cleanPath, nil, parser.ParseComments)
		if err != nil {
			return nil, siggserrors.WrapParseError(filepath.Base(cleanPath), err)
		}
		return file, nil
	})
}

// ParseGoSource parses Go source code from a string, bypassing the cache
func (fr *FileReader) ParseGoSource(filename, source string) (*ast.File, error) {
	file, err := parser.ParseFile(fr.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, siggserrors.WrapParseError(filename, err)
	}
	return file, nil
}

// GoFiles lists the non-test Go files of dir, sorted
func (fr *FileReader) GoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, siggserrors.WrapFileSystemError("read", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// GetFileSet returns the token.FileSet used by this reader
func (fr *FileReader) GetFileSet() *token.FileSet {
	return fr.fileSet
}

// Position returns the source location of pos
func (fr *FileReader) Position(pos token.Pos) siggserrors.SourceLocation {
	p := fr.fileSet.Position(pos)
	return siggserrors.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

// GetCacheStats returns statistics about the cache
func (fr *FileReader) GetCacheStats() CacheStats {
	return fr.astCache.GetStats()
}

// validateAndCleanPath validates and cleans a file path
func validateAndCleanPath(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", siggserrors.New(siggserrors.FileSystemErrorCode, "file path cannot be empty")
	}

	cleanPath := filepath.Clean(filePath)
	if _, err := os.Stat(cleanPath); err != nil {
		return "", siggserrors.WrapFileSystemError("stat", cleanPath, err)
	}

	return cleanPath, nil
}
