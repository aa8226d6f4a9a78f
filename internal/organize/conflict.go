package organize

import (
	"path/filepath"
	"strings"
	"time"

	"filebot/pkg/types"
)

// RenameLayout is the timestamp inserted before the extension of a renamed file.
const RenameLayout = "20060102_150405"

// ResolveConflict decides what to do with a file whose desired destination is
// dest. The renamed path produced for types.ConflictRename is not checked for
// existence, so two conflicts within the same second pick the same name.
func ResolveConflict(exists bool, dest string, policy types.ConflictPolicy, now time.Time) types.ResolvedAction {
	if !exists {
		return types.ResolvedAction{Kind: types.ActionMove, Destination: dest}
	}

	switch policy {
	case types.ConflictOverwrite:
		return types.ResolvedAction{Kind: types.ActionOverwrite, Destination: dest}
	case types.ConflictRename:
		return types.ResolvedAction{Kind: types.ActionRename, Destination: TimestampedName(dest, now)}
	case types.ConflictSkip:
		return types.ResolvedAction{Kind: types.ActionSkip, Reason: "destination exists"}
	default:
		return types.ResolvedAction{Kind: types.ActionSkip, Reason: "destination exists, unknown conflict policy " + string(policy)}
	}
}

// TimestampedName returns path with _YYYYMMDD_HHMMSS inserted before its extension.
func TimestampedName(path string, now time.Time) string {
	dir, name := filepath.Split(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, stem+"_"+now.Format(RenameLayout)+ext)
}
