package organize

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"filebot/internal/errors"
	"filebot/pkg/types"
)

// Execute moves src to dest, or only reports what would happen when dryRun
// is set. A dry run touches nothing, not even the destination directories.
// Failures are returned in the result and never panic or abort the caller.
func Execute(src, dest string, dryRun bool) types.ExecutionResult {
	if dryRun {
		return types.ExecutionResult{Status: types.StatusSimulated}
	}
	if err := MoveFile(src, dest); err != nil {
		return types.ExecutionResult{Status: types.StatusFailed, Err: err}
	}
	return types.ExecutionResult{Status: types.StatusMoved}
}

// MoveFile creates dest's parent directories and renames src onto dest,
// replacing an existing file. Across filesystems it falls back to copying
// and removing the source.
func MoveFile(src, dest string) error {
	if filepath.Clean(src) == filepath.Clean(dest) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.NewFileError("failed to create destination directory", filepath.Dir(dest), errors.MoveFailed, err)
	}

	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return errors.NewFileError("failed to move file", src, errors.MoveFailed, err)
	}

	if err := copyAndDelete(src, dest); err != nil {
		return errors.NewFileError("failed to move file across devices", src, errors.MoveFailed, err)
	}
	return nil
}

// copyAndDelete copies src to dst keeping mode and modification time, then
// removes src. A partial copy is removed again.
func copyAndDelete(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	in.Close()
	if err := os.Remove(src); err != nil {
		// Leave exactly one copy behind.
		os.Remove(dst)
		return err
	}
	return nil
}
