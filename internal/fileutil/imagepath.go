package fileutil

import (
	"errors"
	"path/filepath"
	"strings"
)

// Image reference rejections. None of them names a path.
var (
	ErrImageRemote   = errors.New("not a local image reference")
	ErrImageAbsolute = errors.New("absolute image paths are not allowed")
	ErrImageNoDir    = errors.New("relative image path without a source directory")
	ErrImageOutside  = errors.New("image path leaves the source directory")
)

// ImagePolicy decides which local files image references may read.
type ImagePolicy struct {
	// Dir is the directory relative references resolve against. Empty
	// rejects relative references.
	Dir string
	// AllowAbsolute lets absolute and file:// references through. Only
	// callers that trust the markdown's author set it.
	AllowAbsolute bool
}

// ResolveImagePath maps an image reference to a local file path under p.
// URLs, data URIs and empty references are rejected, as are relative
// paths escaping p.Dir.
func ResolveImagePath(src string, p ImagePolicy) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" || isRemote(src) {
		return "", ErrImageRemote
	}
	src = strings.TrimPrefix(src, "file://")

	if filepath.IsAbs(src) {
		if !p.AllowAbsolute {
			return "", ErrImageAbsolute
		}
		return filepath.Clean(src), nil
	}
	if p.Dir == "" {
		return "", ErrImageNoDir
	}

	absDir, err := filepath.Abs(p.Dir)
	if err != nil {
		return "", ErrImageNoDir
	}
	path := filepath.Join(absDir, filepath.FromSlash(src))
	if !isPathUnderDir(path, absDir) {
		return "", ErrImageOutside
	}
	return path, nil
}

func isRemote(path string) bool {
	return IsURL(path) ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "//") ||
		strings.HasPrefix(path, "#")
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
