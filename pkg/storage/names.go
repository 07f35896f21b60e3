package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// maxNameAttempts bounds the collision-avoidance loop. After "name copy"
// and "name copy 1" through "name copy 99" the search gives up with
// ErrNameExhausted instead of overwriting or spinning.
const maxNameAttempts = 99

// Exists reports whether path exists as either a file or a directory.
func Exists(ctx context.Context, a Adapter, p string) (bool, error) {
	isDir, err := a.DirExists(ctx, p)
	if err != nil {
		return false, err
	}
	if isDir {
		return true, nil
	}
	return a.FileExists(ctx, p)
}

// UniqueName returns a name for a copy of name inside dir that collides
// with nothing already there. The sequence follows the elFinder client's
// convention: "report.txt" → "report copy.txt" → "report copy 1.txt" → …
func UniqueName(ctx context.Context, a Adapter, dir, name string) (string, error) {
	base, ext := SplitExt(name)

	candidate := fmt.Sprintf("%s copy%s", base, ext)
	taken, err := Exists(ctx, a, path.Join(dir, candidate))
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	for i := 1; i <= maxNameAttempts; i++ {
		candidate = fmt.Sprintf("%s copy %d%s", base, i, ext)
		taken, err := Exists(ctx, a, path.Join(dir, candidate))
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%q in %q: %w", name, dir, ErrNameExhausted)
}

// SplitExt splits a file name into stem and extension. Unlike path.Ext it
// treats a leading dot ("dotfile") as part of the stem, not an extension.
func SplitExt(name string) (string, string) {
	ext := path.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
