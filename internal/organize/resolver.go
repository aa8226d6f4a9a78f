package organize

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"filebot/pkg/types"
)

// Placeholders recognized in a condition's destination.
const (
	TokenExtensionGroup = "{extension_group}"
	TokenDateGroup      = "{date_group}"
	TokenFilenamePrefix = "{filename_prefix}"
)

const day = 24 * time.Hour

// AgeInDays returns the whole days between modTime and now, truncated.
func AgeInDays(modTime, now time.Time) int {
	return int(now.Sub(modTime) / day)
}

// DateGroup buckets a file by age. A non-nil statErr or a zero modTime
// yields types.DateGroupUnknown.
func DateGroup(modTime time.Time, statErr error, groups types.DateGroups, now time.Time) string {
	if statErr != nil || modTime.IsZero() {
		return types.DateGroupUnknown
	}
	age := AgeInDays(modTime, now)
	switch {
	case age <= groups.LastWeek:
		return types.DateGroupLastWeek
	case age <= groups.LastMonth:
		return types.DateGroupLastMonth
	default:
		return types.DateGroupOlder
	}
}

// ExtensionGroup returns the file extension uppercased and without its dot.
func ExtensionGroup(file types.CandidateFile) string {
	return strings.ToUpper(strings.TrimPrefix(file.Ext, "."))
}

// FilenamePrefix returns the part of stem before the first underscore, or
// the whole stem when it has none.
func FilenamePrefix(stem string) string {
	prefix, _, _ := strings.Cut(stem, "_")
	return prefix
}

// ExpandTemplate substitutes the destination placeholders in one pass, so
// text produced by one expansion is never scanned for another placeholder.
func ExpandTemplate(template string, file types.CandidateFile, dateGroup string) string {
	r := strings.NewReplacer(
		TokenExtensionGroup, ExtensionGroup(file),
		TokenDateGroup, dateGroup,
		TokenFilenamePrefix, FilenamePrefix(file.Stem),
	)
	return r.Replace(template)
}

// ExpandSubfolder replaces YYYY, MM, DD, HH and MI with the zero-padded
// components of modTime. When the time is unknown the whole pattern
// collapses to types.DateGroupUnknown.
func ExpandSubfolder(pattern string, modTime time.Time, known bool) string {
	if !known {
		return types.DateGroupUnknown
	}
	r := strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", modTime.Year()),
		"MM", fmt.Sprintf("%02d", int(modTime.Month())),
		"DD", fmt.Sprintf("%02d", modTime.Day()),
		"HH", fmt.Sprintf("%02d", modTime.Hour()),
		"MI", fmt.Sprintf("%02d", modTime.Minute()),
	)
	return r.Replace(pattern)
}

// ResolveDestination turns cond's destination template into a directory path
// relative to the target root. The file name is not part of the result.
func ResolveDestination(file types.CandidateFile, cond types.Condition, groups types.DateGroups, now time.Time) string {
	group := DateGroup(file.ModTime, file.ModTimeErr, groups, now)
	dest := ExpandTemplate(cond.Destination, file, group)

	if cond.SubfolderPattern != "" {
		sub := ExpandSubfolder(cond.SubfolderPattern, file.ModTime, file.HasModTime())
		dest = filepath.Join(filepath.FromSlash(dest), filepath.FromSlash(sub))
	}
	return filepath.Clean(filepath.FromSlash(dest))
}
