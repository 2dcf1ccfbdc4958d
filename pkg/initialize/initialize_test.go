// pkg/initialize/initialize_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, builtin store
// PURPOSE: Test full initialization runs across policies, prompts, and dry-run

package initialize_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/inix-sh/inix/pkg/conflict"
	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/filesystem"
	"github.com/inix-sh/inix/pkg/initialize"
	"github.com/inix-sh/inix/pkg/store"
	"github.com/inix-sh/inix/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (types.FS, *store.Store) {
	t.Helper()
	fs := filesystem.NewMemory()
	s, err := store.Load(fs, "")
	require.NoError(t, err)
	return fs, s
}

// snapshot records every file under dir for before/after comparison
func snapshot(t *testing.T, fs types.FS, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	var walk func(string)
	walk = func(d string) {
		entries, err := fs.ReadDir(d)
		if err != nil {
			return
		}
		for _, entry := range entries {
			path := d + "/" + entry.Name()
			if entry.IsDir() {
				walk(path)
				continue
			}
			data, err := fs.ReadFile(path)
			require.NoError(t, err)
			files[path] = string(data)
		}
	}
	walk(dir)
	return files
}

func TestRun_RustWithExtraPackage(t *testing.T) {
	fs, s := setup(t)

	result, err := initialize.Run(initialize.Options{
		Store:         s,
		Selection:     []string{"rust"},
		Directory:     "/project",
		ExtraPackages: []string{"hello"},
		Policy:        types.PolicyOverwrite,
		FileSystem:    fs,
	})
	require.NoError(t, err)
	assert.False(t, result.Cancelled)
	assert.Contains(t, result.Files, "shell.nix")

	descriptor, err := fs.ReadFile("/project/shell.nix")
	require.NoError(t, err)
	text := string(descriptor)

	cargoAt := strings.Index(text, "cargo")
	helloAt := strings.Index(text, "hello")
	require.GreaterOrEqual(t, cargoAt, 0)
	require.GreaterOrEqual(t, helloAt, 0)
	assert.Less(t, cargoAt, helloAt, "toolchain entries precede the extra package")

	_, err = fs.Stat("/project/.inix-backups")
	assert.Error(t, err, "no backup directory on a clean overwrite")
}

func TestRun_MergeKeepRecoversOriginal(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/project", 0755))
	require.NoError(t, fs.WriteFile("/project/shell.nix", []byte("hand-written"), 0644))

	result, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"rust"},
		Directory:  "/project",
		Policy:     types.PolicyMergeKeep,
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generation)
	assert.Equal(t, []string{".inix-backups/gen-1/shell.nix"}, result.Backups)

	backup, err := fs.ReadFile("/project/.inix-backups/gen-1/shell.nix")
	require.NoError(t, err)
	assert.Equal(t, "hand-written", string(backup))

	current, err := fs.ReadFile("/project/shell.nix")
	require.NoError(t, err)
	assert.Contains(t, string(current), "cargo")
}

func TestRun_MergeKeepGenerationsStack(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/project", 0755))
	require.NoError(t, fs.WriteFile("/project/shell.nix", []byte("v1"), 0644))

	opts := initialize.Options{
		Store:      s,
		Selection:  []string{"go"},
		Directory:  "/project",
		Policy:     types.PolicyMergeKeep,
		FileSystem: fs,
	}

	_, err := initialize.Run(opts)
	require.NoError(t, err)

	// overwrite by hand again, re-run
	require.NoError(t, fs.WriteFile("/project/shell.nix", []byte("v2"), 0644))
	result, err := initialize.Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generation)

	gen1, err := fs.ReadFile("/project/.inix-backups/gen-1/shell.nix")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(gen1))

	gen2, err := fs.ReadFile("/project/.inix-backups/gen-2/shell.nix")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(gen2))
}

func TestRun_CancelLeavesDestinationUntouched(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/project", 0755))
	require.NoError(t, fs.WriteFile("/project/shell.nix", []byte("precious"), 0644))
	require.NoError(t, fs.WriteFile("/project/notes.txt", []byte("unrelated"), 0644))

	before := snapshot(t, fs, "/project")

	result, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"rust"},
		Directory:  "/project",
		Policy:     types.PolicyCancel,
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Empty(t, result.Files)

	assert.Equal(t, before, snapshot(t, fs, "/project"), "destination byte-for-byte unchanged")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	fs, s := setup(t)

	result, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"node"},
		Directory:  "/project",
		Policy:     types.PolicyOverwrite,
		DryRun:     true,
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)

	files := result.Files
	sort.Strings(files)
	assert.Equal(t, []string{".envrc", "shell.nix"}, files)

	_, err = fs.Stat("/project")
	assert.Error(t, err, "dry run creates nothing")
}

func TestRun_NoPolicyNoConflictDefaultsToMergeOverwrite(t *testing.T) {
	fs, s := setup(t)

	result, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"python"},
		Directory:  "/project",
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.Equal(t, types.PolicyMergeOverwrite, result.Policy)
	assert.False(t, result.Cancelled)
}

func TestRun_NoPolicyConflictNoPromptCancels(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/project", 0755))
	require.NoError(t, fs.WriteFile("/project/shell.nix", []byte("existing"), 0644))

	result, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"rust"},
		Directory:  "/project",
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.True(t, result.Cancelled)

	data, err := fs.ReadFile("/project/shell.nix")
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestRun_PromptDecidesOnConflict(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/project", 0755))
	require.NoError(t, fs.WriteFile("/project/shell.nix", []byte("existing"), 0644))

	var seen []string
	result, err := initialize.Run(initialize.Options{
		Store:     s,
		Selection: []string{"rust"},
		Directory: "/project",
		Prompt: func(conflicts []string) (types.ConflictPolicy, error) {
			seen = conflicts
			return types.PolicyOverwrite, nil
		},
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shell.nix"}, seen)
	assert.Equal(t, types.PolicyOverwrite, result.Policy)

	data, err := fs.ReadFile("/project/shell.nix")
	require.NoError(t, err)
	assert.Contains(t, string(data), "cargo")
}

func TestRun_UnknownTemplatePropagates(t *testing.T) {
	fs, s := setup(t)

	_, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"cobol"},
		Directory:  "/project",
		Policy:     types.PolicyOverwrite,
		FileSystem: fs,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))

	_, statErr := fs.Stat("/project")
	assert.Error(t, statErr, "planning failures prevent any write")
}

func TestRun_DestinationIsAFile(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/stuff", 0755))
	require.NoError(t, fs.WriteFile("/stuff/project", []byte("a file"), 0644))

	_, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"rust"},
		Directory:  "/stuff/project",
		Policy:     types.PolicyOverwrite,
		FileSystem: fs,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotADirectory))
}

func TestRun_PlanMatchesConflictsHelper(t *testing.T) {
	fs, s := setup(t)
	require.NoError(t, fs.MkdirAll("/project", 0755))
	require.NoError(t, fs.WriteFile("/project/.envrc", []byte("old"), 0644))

	result, err := initialize.Run(initialize.Options{
		Store:      s,
		Selection:  []string{"node"},
		Directory:  "/project",
		Policy:     types.PolicyMergeKeep,
		FileSystem: fs,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".inix-backups/gen-1/.envrc"}, result.Backups)

	// helper agrees nothing is left colliding after the main paths moved
	remaining := conflict.Conflicts(fs, "/empty", types.RenderResult{"x": nil})
	assert.Empty(t, remaining)
}
