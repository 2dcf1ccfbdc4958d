// Package initialize orchestrates one initialization run:
// store lookup, render, conflict planning, and commit.
package initialize

import (
	"github.com/inix-sh/inix/pkg/conflict"
	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/filesystem"
	"github.com/inix-sh/inix/pkg/logging"
	"github.com/inix-sh/inix/pkg/render"
	"github.com/inix-sh/inix/pkg/store"
	"github.com/inix-sh/inix/pkg/types"
	"github.com/inix-sh/inix/pkg/writer"
)

// PromptFunc asks the user for a policy once a conflict is found.
// It receives the colliding relative paths.
type PromptFunc func(conflicts []string) (types.ConflictPolicy, error)

// Options contains everything one run needs
type Options struct {
	// Store is the loaded template store
	Store *store.Store

	// Selection is the ordered list of template names to combine
	Selection []string

	// Directory is the destination directory
	Directory string

	// ExtraPackages and ExtraInputs are appended after all template entries
	ExtraPackages []string
	ExtraInputs   []string

	// Policy is the conflict policy; PolicyUnset defers to Prompt
	Policy types.ConflictPolicy

	// Prompt resolves the policy interactively when Policy is unset
	// and a conflict exists. Nil means cancel on conflict.
	Prompt PromptFunc

	// DryRun plans but writes nothing
	DryRun bool

	// FileSystem is the filesystem to use (optional, defaults to OS filesystem)
	FileSystem types.FS
}

// Result reports what one run did (or, for dry runs, would do)
type Result struct {
	// Files are the output paths, relative to the destination
	Files []string

	// Backups are the backup paths scheduled for pre-existing files
	Backups []string

	// Generation tags this run's backups, zero if none
	Generation int

	// Policy is the policy that was ultimately applied
	Policy types.ConflictPolicy

	// DryRun echoes the request
	DryRun bool

	// Cancelled is true when the run stopped via the cancel policy;
	// the destination is untouched in that case
	Cancelled bool
}

// Run performs one initialization to completion
func Run(opts Options) (*Result, error) {
	log := logging.GetLogger("initialize")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}

	if opts.Directory == "" {
		return nil, errors.New(errors.ErrInvalidInput, "destination directory cannot be empty")
	}
	if info, err := fs.Stat(opts.Directory); err == nil && !info.IsDir() {
		return nil, errors.Newf(errors.ErrNotADirectory, "%q is not a directory", opts.Directory)
	}

	result, err := render.Render(opts.Store, opts.Selection, opts.ExtraPackages, opts.ExtraInputs)
	if err != nil {
		return nil, err
	}

	policy, err := resolvePolicy(fs, opts, result)
	if err != nil {
		return nil, err
	}

	plan, err := conflict.Plan(fs, opts.Directory, result, policy)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrUserCancelled) {
			log.Info().Msg("Run cancelled, destination untouched")
			return &Result{Policy: policy, DryRun: opts.DryRun, Cancelled: true}, nil
		}
		return nil, err
	}

	if !opts.DryRun {
		if err := writer.Commit(fs, opts.Directory, plan); err != nil {
			return nil, err
		}
	}

	out := &Result{
		Policy:     policy,
		Generation: plan.Generation,
		DryRun:     opts.DryRun,
	}
	for _, entry := range plan.Entries {
		out.Files = append(out.Files, entry.Path)
		if entry.Action == types.ActionBackupThenWrite {
			out.Backups = append(out.Backups, entry.BackupPath)
		}
	}

	log.Info().
		Strs("templates", opts.Selection).
		Str("dest", opts.Directory).
		Str("policy", string(policy)).
		Bool("dryRun", opts.DryRun).
		Int("files", len(out.Files)).
		Msg("Initialization finished")

	return out, nil
}

// resolvePolicy picks the effective policy: explicit choice first,
// then merge-overwrite when nothing collides, then the interactive
// prompt, then cancel.
func resolvePolicy(fs types.FS, opts Options, result types.RenderResult) (types.ConflictPolicy, error) {
	if opts.Policy != types.PolicyUnset {
		return opts.Policy, nil
	}

	conflicts := conflict.Conflicts(fs, opts.Directory, result)
	if len(conflicts) == 0 {
		return types.PolicyMergeOverwrite, nil
	}

	if opts.Prompt == nil {
		return types.PolicyCancel, nil
	}
	return opts.Prompt(conflicts)
}
