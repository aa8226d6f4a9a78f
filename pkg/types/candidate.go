package types

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CandidateFile is a read-only snapshot of one file, taken once per evaluation
// so every decision about the file sees the same metadata.
type CandidateFile struct {
	Path       string    // full path of the file
	Name       string    // base name, e.g. "report_2024.pdf"
	Stem       string    // base name without extension, e.g. "report_2024"
	Ext        string    // extension as found on disk, with dot, e.g. ".pdf"
	Size       int64     // size in bytes, zero when metadata is unavailable
	ModTime    time.Time // zero when metadata is unavailable
	ModTimeErr error     // non-nil when the file could not be stat'ed
}

// NewCandidate snapshots the file at path. A stat failure does not fail the
// snapshot; it is recorded in ModTimeErr so date placeholders can fall back.
func NewCandidate(path string) CandidateFile {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	c := CandidateFile{
		Path: path,
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  ext,
	}

	info, err := os.Stat(path)
	if err != nil {
		c.ModTimeErr = err
		return c
	}
	c.ModTime = info.ModTime()
	c.Size = info.Size()
	return c
}

// HasModTime reports whether the modification time could be read.
func (c CandidateFile) HasModTime() bool {
	return c.ModTimeErr == nil && !c.ModTime.IsZero()
}

// NormalizedExt returns the lowercased extension without its leading dot.
func (c CandidateFile) NormalizedExt() string {
	return NormalizeExtension(c.Ext)
}
