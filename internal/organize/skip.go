package organize

import (
	"io/fs"
	"os"
	"strings"
)

// Reasons reported by CheckSkippable.
const (
	SkipDirectory  = "directory"
	SkipHidden     = "hidden file"
	SkipLockMarker = "lock marker"
	SkipIgnored    = "matches ignore pattern"
	SkipLocked     = "file is locked or in use"
)

// IgnoreMatcher reports whether a file name is excluded by configuration.
type IgnoreMatcher interface {
	Ignored(name string) bool
}

// CheckSkippable reports whether the entry at path must be left alone, and why.
// Symlinks are followed when deciding whether the entry is a directory.
// Files are checked by opening them for append, which neither truncates nor
// writes; the handle is closed before returning.
func CheckSkippable(path string, info fs.FileInfo, ignore IgnoreMatcher) (string, bool) {
	if isDir(path, info) {
		return SkipDirectory, true
	}

	name := info.Name()
	switch {
	case strings.HasPrefix(name, "~$"):
		return SkipLockMarker, true
	case strings.HasPrefix(name, "."):
		return SkipHidden, true
	case ignore != nil && ignore.Ignored(name):
		return SkipIgnored, true
	}

	if !canOpenForAppend(path) {
		return SkipLocked, true
	}
	return "", false
}

func isDir(path string, info fs.FileInfo) bool {
	if info.Mode()&fs.ModeSymlink == 0 {
		return info.IsDir()
	}
	target, err := os.Stat(path)
	return err == nil && target.IsDir()
}

func canOpenForAppend(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return false
	}
	defer f.Close()
	return true
}
