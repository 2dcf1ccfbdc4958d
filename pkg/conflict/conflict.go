// Package conflict classifies a render against the destination
// directory and produces the plan the writer commits. Each output
// path is classified independently; the only cross-file state is the
// Generation tag shared by all of one run's backups.
package conflict

import (
	stderrors "errors"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/logging"
	"github.com/inix-sh/inix/pkg/types"
)

// Plan builds the conflict plan for one commit.
//
// Overwrite and MergeOverwrite schedule a plain write for every
// rendered path. MergeKeep schedules existing files to move into a
// generation backup first. Cancel fails immediately with
// USER_CANCELLED and guarantees nothing was written.
func Plan(fs types.FS, destDir string, result types.RenderResult, policy types.ConflictPolicy) (types.ConflictPlan, error) {
	log := logging.GetLogger("conflict")

	if policy == types.PolicyCancel {
		return types.ConflictPlan{}, errors.New(errors.ErrUserCancelled, "operation cancelled")
	}
	if !policy.Valid() {
		return types.ConflictPlan{}, errors.Newf(errors.ErrInvalidPolicy, "invalid conflict policy %q", string(policy))
	}

	paths := result.Paths()
	sort.Strings(paths)

	plan := types.ConflictPlan{Entries: make([]types.PlanEntry, 0, len(paths))}

	generation := 0
	if policy == types.PolicyMergeKeep {
		// Only resolve a generation if something actually collides
		for _, path := range paths {
			if fileExists(fs, filepath.Join(destDir, path)) {
				gen, err := NextGeneration(fs, filepath.Join(destDir, types.BackupDirName))
				if err != nil {
					return types.ConflictPlan{}, err
				}
				generation = gen
				break
			}
		}
	}

	for _, path := range paths {
		entry := types.PlanEntry{
			Path:    path,
			Action:  types.ActionWrite,
			Content: result[path],
		}

		if policy == types.PolicyMergeKeep && fileExists(fs, filepath.Join(destDir, path)) {
			entry.Action = types.ActionBackupThenWrite
			entry.BackupPath = filepath.Join(
				types.BackupDirName,
				types.GenerationPrefix+strconv.Itoa(generation),
				path,
			)
		}

		plan.Entries = append(plan.Entries, entry)
	}
	plan.Generation = generation

	log.Debug().
		Str("policy", string(policy)).
		Int("entries", len(plan.Entries)).
		Int("generation", generation).
		Bool("backups", plan.HasBackups()).
		Msg("Plan built")

	return plan, nil
}

// Conflicts reports which rendered paths already exist in destDir.
// The front-end uses this to decide whether prompting is needed at all.
func Conflicts(fs types.FS, destDir string, result types.RenderResult) []string {
	paths := result.Paths()
	sort.Strings(paths)

	var existing []string
	for _, path := range paths {
		if fileExists(fs, filepath.Join(destDir, path)) {
			existing = append(existing, path)
		}
	}
	return existing
}

// NextGeneration scans backupDir for gen-<N> entries and returns the
// highest N plus one, starting at 1 for an absent directory. A scan
// failure other than not-exist is an error; guessing a generation
// there could land new backups in an already populated gen dir.
// The counter lives only in the directory listing; concurrent runs
// against the same destination are not guarded.
func NextGeneration(fs types.FS, backupDir string) (int, error) {
	entries, err := fs.ReadDir(backupDir)
	if err != nil {
		// absent backup dir means first generation
		if stderrors.Is(err, iofs.ErrNotExist) {
			return 1, nil
		}
		return 0, errors.Wrapf(err, errors.ErrFileRead, "failed to scan backup directory %s", backupDir)
	}

	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		raw, ok := strings.CutPrefix(entry.Name(), types.GenerationPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return highest + 1, nil
}

func fileExists(fs types.FS, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
