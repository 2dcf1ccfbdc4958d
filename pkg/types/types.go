// Package types defines the core value types shared across inix:
// templates, render results, conflict policies, and plans.
package types

import "fmt"

// Well-known file names inside a rendered environment
const (
	// DescriptorFile is the environment descriptor every render produces
	DescriptorFile = "shell.nix"

	// EnvrcFile is the direnv integration file some templates carry
	EnvrcFile = ".envrc"

	// BackupDirName is the subdirectory holding generation backups
	BackupDirName = ".inix-backups"

	// GenerationPrefix prefixes per-generation backup subdirectories
	GenerationPrefix = "gen-"
)

// Template is a named, reusable bundle of configuration file content
// and declared dependency entries. Templates are immutable at use time;
// the store builds them once at process start.
type Template struct {
	// Name uniquely identifies the template in the store
	Name string

	// Description is a one-line summary from the manifest
	Description string

	// Packages are the declared package entries, in manifest order.
	// They are opaque strings; inix never interprets them.
	Packages []string

	// Inputs are the declared extra shell inputs, in manifest order
	Inputs []string

	// AuxFiles maps relative output paths to verbatim file content
	// (e.g. ".envrc"). The descriptor itself is never an aux file.
	AuxFiles map[string][]byte

	// Readme holds the bundle's README markdown, if present
	Readme string

	// Builtin is true for templates compiled into the binary
	Builtin bool

	// Path is the source directory for user templates, empty for builtins
	Path string
}

// RenderResult maps output relative file paths to final byte content.
// For a given selection and extra-entries list the mapping is
// deterministic: identical inputs produce byte-identical content.
type RenderResult map[string][]byte

// Paths returns the result's output paths in unspecified order
func (r RenderResult) Paths() []string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	return paths
}

// ConflictPolicy selects how pre-existing destination files are treated
type ConflictPolicy string

const (
	// PolicyOverwrite writes every rendered path, discarding existing files
	PolicyOverwrite ConflictPolicy = "overwrite"

	// PolicyMergeKeep moves existing files to a generation backup before writing
	PolicyMergeKeep ConflictPolicy = "merge-keep"

	// PolicyMergeOverwrite overwrites rendered paths, leaves other files alone
	PolicyMergeOverwrite ConflictPolicy = "merge-overwrite"

	// PolicyCancel aborts planning without touching the destination
	PolicyCancel ConflictPolicy = "cancel"

	// PolicyUnset means no policy was chosen yet (prompt or config decides)
	PolicyUnset ConflictPolicy = ""
)

// Valid reports whether p is one of the four concrete policies
func (p ConflictPolicy) Valid() bool {
	switch p {
	case PolicyOverwrite, PolicyMergeKeep, PolicyMergeOverwrite, PolicyCancel:
		return true
	}
	return false
}

// ParsePolicy converts a user-supplied string to a ConflictPolicy
func ParsePolicy(s string) (ConflictPolicy, error) {
	p := ConflictPolicy(s)
	if !p.Valid() {
		return PolicyUnset, fmt.Errorf("unknown conflict policy %q (want overwrite, merge-keep, merge-overwrite, or cancel)", s)
	}
	return p, nil
}

// PlanAction classifies how a single output path will be applied
type PlanAction string

const (
	// ActionWrite writes the rendered content, clobbering any existing file
	ActionWrite PlanAction = "write"

	// ActionBackupThenWrite moves the existing file to its backup
	// location, then writes the rendered content
	ActionBackupThenWrite PlanAction = "backup-then-write"
)

// PlanEntry is the planned treatment of one output path
type PlanEntry struct {
	// Path is the output path relative to the destination directory
	Path string

	// Action is what the writer will do for this path
	Action PlanAction

	// BackupPath is where the pre-existing file moves first,
	// relative to the destination directory. Set only for
	// ActionBackupThenWrite.
	BackupPath string

	// Content is the rendered bytes to write
	Content []byte
}

// ConflictPlan is the full, ordered set of writes for one commit.
// Entries are sorted by Path so commits are deterministic.
type ConflictPlan struct {
	Entries []PlanEntry

	// Generation tags this run's backups; zero when no backups are planned
	Generation int
}

// HasBackups reports whether any entry moves an existing file aside
func (p ConflictPlan) HasBackups() bool {
	for _, e := range p.Entries {
		if e.Action == ActionBackupThenWrite {
			return true
		}
	}
	return false
}

// FileError records a single path's failure during commit
type FileError struct {
	Path string
	Err  error
}

func (f FileError) String() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}
