package utils

import (
	"os"
	"path/filepath"

	siggserrors "github.com/toyz/siggs/pkg/errors"
	"golang.org/x/mod/modfile"
)

// ModuleInfo describes the module enclosing a directory
type ModuleInfo struct {
	Path string // module path from the module directive
	Root string // directory holding go.mod
}

// ImportPath returns the import path of dir, which must lie inside the module
func (m *ModuleInfo) ImportPath(dir string) (string, error) {
	rel, err := filepath.Rel(m.Root, dir)
	if err != nil {
		return "", siggserrors.WrapFileSystemError("resolve", dir, err)
	}
	if rel == "." {
		return m.Path, nil
	}
	return m.Path + "/" + filepath.ToSlash(rel), nil
}

// ParseModuleName extracts the module name from a go.mod file
func ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", siggserrors.Newf(siggserrors.ConfigurationErrorCode, "file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", siggserrors.WrapFileSystemError("read", cleanPath, err)
	}

	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return "", siggserrors.WrapConfigurationError("go.mod", "parse", err)
	}

	if modFile.Module == nil {
		return "", siggserrors.New(siggserrors.ConfigurationErrorCode, "no module declaration found in go.mod")
	}

	return modFile.Module.Mod.Path, nil
}

// FindModule searches for a go.mod file starting from the given directory
// and walking up
func FindModule(startDir string) (*ModuleInfo, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, siggserrors.WrapFileSystemError("resolve", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			path, err := ParseModuleName(goModPath)
			if err != nil {
				return nil, err
			}
			return &ModuleInfo{Path: path, Root: currentDir}, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return nil, siggserrors.New(siggserrors.FileSystemErrorCode, "go.mod file not found").
		WithContext("path", startDir)
}
