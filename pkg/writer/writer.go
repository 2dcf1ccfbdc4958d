// Package writer commits a conflict plan to disk. It applies every
// entry it can and reports per-path failures; it never rolls back
// entries that already succeeded, so backups taken during a failed
// commit stay on disk for manual recovery.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/logging"
	"github.com/inix-sh/inix/pkg/types"
)

// PartialWriteError carries the per-path outcome of a failed commit
type PartialWriteError struct {
	Succeeded []string
	Failed    []types.FileError
}

func (e *PartialWriteError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%d of %d entries failed: %s",
		len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(parts, "; "))
}

// Commit applies the plan under destDir, creating the destination and
// any backup directories as needed. Entries are applied in plan order.
// On any I/O failure the remaining entries are still attempted and the
// result is a PARTIAL_WRITE error wrapping a PartialWriteError.
func Commit(fs types.FS, destDir string, plan types.ConflictPlan) error {
	log := logging.GetLogger("writer")
	done := logging.LogOperationStart(log, "commit")
	defer done()

	if err := fs.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create destination directory %s", destDir)
	}

	var succeeded []string
	var failed []types.FileError

	for _, entry := range plan.Entries {
		if err := applyEntry(fs, destDir, entry); err != nil {
			log.Error().Err(err).Str("path", entry.Path).Msg("Entry failed")
			failed = append(failed, types.FileError{Path: entry.Path, Err: err})
			continue
		}
		succeeded = append(succeeded, entry.Path)
	}

	if len(failed) > 0 {
		partial := &PartialWriteError{Succeeded: succeeded, Failed: failed}
		return errors.Wrap(partial, errors.ErrPartialWrite, "commit did not complete")
	}

	log.Info().
		Str("dest", destDir).
		Int("files", len(succeeded)).
		Msg("Commit complete")

	return nil
}

// applyEntry moves an existing file to its backup location if the
// plan asks for it, then writes the rendered content.
func applyEntry(fs types.FS, destDir string, entry types.PlanEntry) error {
	target := filepath.Join(destDir, entry.Path)

	if entry.Action == types.ActionBackupThenWrite {
		backup := filepath.Join(destDir, entry.BackupPath)
		if err := fs.MkdirAll(filepath.Dir(backup), 0755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
		if err := fs.Rename(target, backup); err != nil {
			return fmt.Errorf("move existing file to backup: %w", err)
		}
	}

	if dir := filepath.Dir(target); dir != destDir {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}

	if err := fs.WriteFile(target, entry.Content, os.FileMode(0644)); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", entry.Path)
	}

	return nil
}
