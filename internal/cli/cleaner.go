package cli

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/siggs/internal/emit"
	"github.com/toyz/siggs/internal/utils"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// skipDirs are never descended into by a recursive clean
var skipDirs = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
}

// Cleaner removes files previously written by emit
type Cleaner struct {
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a new cleaner
func NewCleaner(diagnostics *utils.DiagnosticSystem) *Cleaner {
	return &Cleaner{diagnostics: diagnostics}
}

// Clean removes the generated files in each directory and returns their
// paths. A directory ending in "/..." is cleaned recursively.
func (c *Cleaner) Clean(directories []string) ([]string, error) {
	var removed []string
	for _, dir := range directories {
		var err error
		if base, ok := strings.CutSuffix(dir, "/..."); ok {
			if base == "" {
				base = "."
			}
			err = c.cleanRecursively(base, &removed)
		} else {
			err = c.cleanSingleDirectory(dir, &removed)
		}
		if err != nil {
			return removed, err
		}
	}

	c.diagnostics.Success("Removed %d generated file(s)", len(removed))
	return removed, nil
}

func (c *Cleaner) cleanRecursively(baseDir string, removed *[]string) error {
	return filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return siggserrors.WrapFileSystemError("walk", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != baseDir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return c.cleanSingleDirectory(path, removed)
	})
}

func (c *Cleaner) cleanSingleDirectory(dir string, removed *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return siggserrors.WrapFileSystemError("read", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		generated, err := isGenerated(path)
		if err != nil {
			return err
		}
		if !generated {
			continue
		}

		if err := os.Remove(path); err != nil {
			return siggserrors.WrapFileSystemError("remove", path, err)
		}
		c.diagnostics.Verbose("Removed %s", path)
		*removed = append(*removed, path)
	}
	return nil
}

// isGenerated reports whether the file starts with the emit header comment
func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, siggserrors.WrapFileSystemError("open", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.TrimSpace(line) == "// "+emit.HeaderComment, nil
}

func skipDir(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
