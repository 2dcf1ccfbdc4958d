// Package filesystem provides implementations of the types.FS interface.
//
// Two implementations exist: an OS-backed one used by the CLI, and an
// afero-backed one used by tests that want an in-memory filesystem.
package filesystem
