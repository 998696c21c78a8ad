package services

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrOutsideImportDir is returned for import paths that are absolute or
// resolve outside the import directory.
var ErrOutsideImportDir = errors.New("path outside import directory")

// CheckImportPath rejects paths that are absolute, empty or climb out of the
// directory they are joined to. It does not touch the filesystem.
func CheckImportPath(p string) error {
	if !filepath.IsLocal(p) {
		return fmt.Errorf("%w: %q", ErrOutsideImportDir, p)
	}
	return nil
}

// ResolveImportPath joins p onto dir and follows symlinks. The result must
// still lie under dir. A missing file keeps os.ErrNotExist in the chain.
func ResolveImportPath(dir, p string) (string, error) {
	if err := CheckImportPath(p); err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("import directory: %w", err)
	}
	target, err := filepath.EvalSymlinks(filepath.Join(root, p))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideImportDir, p)
	}
	return target, nil
}
