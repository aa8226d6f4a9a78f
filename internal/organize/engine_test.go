package organize_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filebot/internal/config"
	"filebot/internal/errors"
	"filebot/internal/organize"
	"filebot/pkg/testutils"
	"filebot/pkg/types"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func writeFile(t *testing.T, dir, name, content string, age time.Duration) string {
	t.Helper()
	return testutils.WriteFileAt(t, dir, name, content, fixedNow.Add(-age))
}

func textRule() types.Rule {
	return types.Rule{
		Name:       "Text",
		Conditions: []types.Condition{{Extensions: []string{".txt"}, Destination: "Docs/{extension_group}"}},
	}
}

func newEngine(t *testing.T, cfg *config.Config, opts ...organize.Option) (*organize.Engine, *organize.Recorder) {
	t.Helper()
	rec := &organize.Recorder{}
	opts = append([]organize.Option{organize.WithClock(clock), organize.WithReporter(rec)}, opts...)
	engine, err := organize.NewEngine(cfg, opts...)
	require.NoError(t, err)
	return engine, rec
}

// listTree returns every file and directory below root, relative and sorted.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	require.NoError(t, filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if rel, _ := filepath.Rel(root, path); rel != "." {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	}))
	sort.Strings(out)
	return out
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello", time.Hour)

	engine, _ := newEngine(t, config.New(dir, textRule()))
	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Docs", "TXT", "notes.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "notes.txt"))
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Moved)
	assert.Equal(t, int64(5), summary.BytesMoved)
	assert.NotEmpty(t, summary.PassID)
}

func TestRunMixedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Report.PDF", "pdf", 3*24*time.Hour)
	writeFile(t, dir, "photo_beach.jpg", "jpg", 10*24*time.Hour)
	writeFile(t, dir, "song.mp3", "mp3", time.Hour)
	writeFile(t, dir, ".hidden.pdf", "hidden", time.Hour)
	writeFile(t, dir, "~$draft.docx", "lock", time.Hour)
	writeFile(t, dir, "movie.part", "partial", time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Existing"), 0755))

	cfg := config.New(dir,
		types.Rule{Name: "Documents", Conditions: []types.Condition{
			{Extensions: []string{".pdf"}, Destination: "Documents/{extension_group}/{date_group}"},
		}},
		types.Rule{Name: "Images", Conditions: []types.Condition{
			{Extensions: []string{".JPG"}, Destination: "Images/{filename_prefix}", SubfolderPattern: "YYYY/MM"},
		}},
		types.Rule{Name: "Everything", Conditions: []types.Condition{
			{Extensions: []string{"*"}, FilenameContains: []string{"never"}, Destination: "Misc"},
		}},
	)
	cfg.Ignore = []string{"*.part"}

	engine, rec := newEngine(t, cfg)
	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Documents", "PDF", "Last_Week", "Report.PDF"))
	assert.FileExists(t, filepath.Join(dir, "Images", "photo", "2024", "06", "photo_beach.jpg"))
	assert.FileExists(t, filepath.Join(dir, "song.mp3"))
	assert.FileExists(t, filepath.Join(dir, ".hidden.pdf"), "hidden files are never classified")
	assert.FileExists(t, filepath.Join(dir, "~$draft.docx"), "lock markers are never classified")
	assert.FileExists(t, filepath.Join(dir, "movie.part"))

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 5, summary.Skipped)
	assert.Equal(t, 1, summary.Unmatched)
	assert.Equal(t, 4, summary.Excluded)
	assert.Empty(t, rec.AtLevel(organize.LevelError))

	last := rec.Events()[len(rec.Events())-1]
	assert.Equal(t, "Organization complete. Processed: 2, Skipped: 5", last.Message)
	assert.Equal(t, summary.PassID, last.PassID)
}

func TestFirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "x", time.Hour)

	cfg := config.New(dir,
		types.Rule{Name: "First", Conditions: []types.Condition{{Extensions: []string{".txt"}, Destination: "First"}}},
		types.Rule{Name: "Second", Conditions: []types.Condition{{Extensions: []string{".txt"}, Destination: "Second"}}},
	)
	engine, rec := newEngine(t, cfg)
	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "First", "notes.txt"))
	assert.NoDirExists(t, filepath.Join(dir, "Second"))
	for _, e := range rec.Events() {
		assert.NotEqual(t, "Second", e.Rule)
	}
}

func TestConflictPolicies(t *testing.T) {
	setup := func(t *testing.T, policy types.ConflictPolicy) (string, *organize.Engine, *organize.Recorder) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "incoming", time.Hour)
		writeFile(t, dir, "Docs/TXT/a.txt", "existing", time.Hour)
		cfg := config.New(dir, textRule())
		cfg.ConflictResolution = string(policy)
		engine, rec := newEngine(t, cfg)
		return dir, engine, rec
	}

	t.Run("rename", func(t *testing.T) {
		dir, engine, _ := setup(t, types.ConflictRename)
		summary, err := engine.Run(context.Background())
		require.NoError(t, err)

		renamed := filepath.Join(dir, "Docs", "TXT", "a_20240615_120000.txt")
		data, err := os.ReadFile(renamed)
		require.NoError(t, err)
		assert.Equal(t, "incoming", string(data))

		data, err = os.ReadFile(filepath.Join(dir, "Docs", "TXT", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "existing", string(data), "the original is untouched")

		assert.Equal(t, 1, summary.Processed)
		assert.Equal(t, 1, summary.Renamed)
	})

	t.Run("skip", func(t *testing.T) {
		dir, engine, _ := setup(t, types.ConflictSkip)
		summary, err := engine.Run(context.Background())
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "incoming", string(data), "source stays in place")
		assert.Equal(t, 0, summary.Processed)
		assert.Equal(t, 2, summary.Skipped, "the Docs directory and the conflicting file")
		assert.Equal(t, 1, summary.Conflicts)
	})

	t.Run("overwrite", func(t *testing.T) {
		dir, engine, rec := setup(t, types.ConflictOverwrite)
		summary, err := engine.Run(context.Background())
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "Docs", "TXT", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "incoming", string(data))
		assert.Equal(t, 1, summary.Overwritten)

		warnings := rec.AtLevel(organize.LevelWarn)
		require.Len(t, warnings, 1)
		assert.Equal(t, "Overwriting existing file", warnings[0].Message)
	})
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "x", time.Hour)
	writeFile(t, dir, "report.txt", "y", time.Hour)
	writeFile(t, dir, "Docs/TXT/report.txt", "existing", time.Hour)
	before := listTree(t, dir)

	cfg := config.New(dir, textRule())
	engine, rec := newEngine(t, cfg, organize.WithDryRun(true))
	assert.True(t, engine.DryRun())

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before, listTree(t, dir), "dry run never touches the filesystem")
	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Simulated)
	assert.Equal(t, 1, summary.Renamed)
	assert.Equal(t, 0, summary.Moved)

	var simulated int
	for _, e := range rec.AtLevel(organize.LevelInfo) {
		if strings.HasPrefix(e.Message, "[DRY RUN]") {
			simulated++
		}
	}
	assert.Equal(t, 2, simulated)
}

func TestDryRunProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	exts := []string{".txt", ".pdf", ".jpg", ".mp3", ""}

	properties.Property("dry run leaves the tree unchanged and counts every file", prop.ForAll(
		func(names []string, extIdx []int) bool {
			dir, err := os.MkdirTemp("", "filebot-dryrun-*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(dir)

			for i, name := range names {
				file := name + exts[extIdx[i%len(extIdx)]%len(exts)]
				if err := os.WriteFile(filepath.Join(dir, file), []byte(name), 0644); err != nil {
					return false
				}
			}
			before := listTree(t, dir)

			cfg := config.New(dir,
				types.Rule{Name: "Docs", Conditions: []types.Condition{{Extensions: []string{".txt", ".pdf"}, Destination: "Docs/{extension_group}/{date_group}"}}},
				types.Rule{Name: "Images", Conditions: []types.Condition{{Extensions: []string{".jpg"}, Destination: "Images", SubfolderPattern: "YYYY/MM"}}},
			)
			engine, err := organize.NewEngine(cfg, organize.WithDryRun(true), organize.WithReporter(organize.Discard))
			if err != nil {
				return false
			}
			summary, err := engine.Run(context.Background())
			if err != nil {
				return false
			}

			after := listTree(t, dir)
			return strings.Join(before, "\n") == strings.Join(after, "\n") &&
				summary.Processed+summary.Skipped == len(before)
		},
		gen.SliceOfN(8, gen.RegexMatch(`[a-z][a-z0-9]{0,7}`)).Map(dedupe),
		gen.SliceOfN(8, gen.IntRange(0, 4)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func TestTargetMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	engine, rec := newEngine(t, config.New(dir, textRule()))

	summary, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTargetMissing(err))
	assert.True(t, errors.IsFatal(err))
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)

	errs := rec.AtLevel(organize.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, dir, errs[0].Path)
}

func TestTargetIsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "not-a-dir", "x", time.Hour)
	engine, _ := newEngine(t, config.New(path, textRule()))

	_, err := engine.Run(context.Background())
	assert.True(t, errors.IsTargetMissing(err))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a", time.Hour)
	writeFile(t, dir, "b.txt", "b", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine, _ := newEngine(t, config.New(dir, textRule()))
	summary, err := engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Processed)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestMoveFailureDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a", time.Hour)
	writeFile(t, dir, "b.pdf", "b", time.Hour)
	// A file where the "Blocked" directory should be makes the .txt move fail.
	writeFile(t, dir, "Blocked", "x", time.Hour)

	cfg := config.New(dir,
		types.Rule{Name: "Text", Conditions: []types.Condition{{Extensions: []string{".txt"}, Destination: "Blocked/Sub"}}},
		types.Rule{Name: "PDF", Conditions: []types.Condition{{Extensions: []string{".pdf"}, Destination: "PDF"}}},
	)
	engine, rec := newEngine(t, cfg)
	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "PDF", "b.pdf"))
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Skipped, "the failed move and the unmatched Blocked file")

	errs := rec.AtLevel(organize.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Failed to move file", errs[0].Message)
	assert.Equal(t, errors.MoveFailed, errors.KindOf(errs[0].Err))
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "x", time.Hour)
	engine, _ := newEngine(t, config.New(dir, textRule()))

	res := engine.ProcessFile(path)
	assert.Equal(t, types.OutcomeMoved, res.Outcome)
	assert.Equal(t, types.ActionMove, res.Action)
	assert.Equal(t, "Text", res.RuleName)
	assert.Equal(t, filepath.Join(dir, "Docs", "TXT", "notes.txt"), res.DestinationPath)

	res = engine.ProcessFile(path)
	assert.Equal(t, types.OutcomeExcluded, res.Outcome, "file is gone after the move")
	assert.Error(t, res.Error)
}

func TestAlreadyAtDestination(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "x", time.Hour)

	cfg := config.New(dir, types.Rule{Name: "Stay", Conditions: []types.Condition{{Extensions: []string{"*"}, Destination: "."}}})
	engine, _ := newEngine(t, cfg)
	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.Equal(t, 1, summary.Conflicts)
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	_, err := organize.NewEngine(nil)
	assert.True(t, errors.IsInvalidConfig(err))

	_, err = organize.NewEngine(config.New("", textRule()))
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestEmptyRuleSetLeavesFilesUnmatched(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "a", time.Hour)
	writeFile(t, dir, "photo.jpg", "b", time.Hour)

	cfg, err := config.Parse([]byte("target_directory: " + dir + "\nrules: []\n"))
	require.NoError(t, err)

	engine, rec := newEngine(t, cfg)
	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"notes.txt", "photo.jpg"}, listTree(t, dir))
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 2, summary.Unmatched)
	assert.Empty(t, rec.AtLevel(organize.LevelWarn))
}

func TestSymlinkedDirectoryIsExcluded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "real"), 0755))
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	engine, rec := newEngine(t, config.New(dir, textRule()))
	summary, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Excluded)
	assert.Equal(t, 0, summary.Locked)
	assert.Empty(t, rec.AtLevel(organize.LevelWarn))
}

func TestDryRunFromConfig(t *testing.T) {
	cfg := config.New(t.TempDir(), textRule())
	cfg.DryRun = true

	engine, err := organize.NewEngine(cfg)
	require.NoError(t, err)
	assert.True(t, engine.DryRun())

	engine, err = organize.NewEngine(cfg, organize.WithDryRun(false))
	require.NoError(t, err)
	assert.False(t, engine.DryRun())
}

func TestFactory(t *testing.T) {
	defer organize.ResetOrganizerFactory()

	called := false
	organize.SetOrganizerFactory(func(cfg *config.Config, opts ...organize.Option) (organize.Organizer, error) {
		called = true
		e, err := organize.NewEngine(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	_, err := organize.CurrentOrganizerFactory(config.New(t.TempDir(), textRule()))
	require.NoError(t, err)
	assert.True(t, called)

	organize.ResetOrganizerFactory()
	o, err := organize.CurrentOrganizerFactory(config.New("", textRule()))
	assert.Error(t, err)
	assert.Nil(t, o)
}
