// Package walk enumerates the filesystem tree handed to cohesort. The
// ordering engine consumes whatever targets this package produces and
// makes no assumption about traversal order.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cohesort/cohesort/internal/errs"
	"github.com/cohesort/cohesort/pkg/types"
)

// Walk enumerates every file and directory under root (root itself
// excluded) and returns them as targets. A failure to read a directory
// entry is a Walk-kind error and aborts the traversal immediately, per
// the error-handling design: Walk errors are not recoverable locally.
func Walk(root string) ([]types.Target, error) {
	var targets []types.Target

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.New(errs.Walk, path, err)
		}
		if path == root {
			return nil
		}
		kind := types.KindFile
		if d.IsDir() {
			kind = types.KindDirectory
		}
		targets = append(targets, types.Target{Kind: kind, Path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return targets, nil
}

// RelativizeAll rewrites each path relative to cwd before output. A
// target that cannot be relativized (e.g. on a different volume on
// Windows) is a BadPath error and aborts output.
func RelativizeAll(targets []types.Target, cwd string) ([]string, error) {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		rel, err := Relativize(t.Path, cwd)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// Relativize rewrites path relative to cwd when path is absolute;
// relative paths are returned unchanged.
func Relativize(path, cwd string) (string, error) {
	if !filepath.IsAbs(path) {
		return path, nil
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return "", errs.New(errs.BadPath, path, err)
	}
	return rel, nil
}

// Cwd returns the process's current working directory, wrapped as a
// BadPath error on failure so callers can fold it into the same exit
// path as a relativization failure.
func Cwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errs.New(errs.BadPath, "", err)
	}
	return cwd, nil
}
