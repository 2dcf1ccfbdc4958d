// pkg/render/render_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory FS, builtin store
// PURPOSE: Test merged rendering, ordering, determinism, and aux conflicts

package render_test

import (
	"strings"
	"testing"

	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/filesystem"
	"github.com/inix-sh/inix/pkg/render"
	"github.com/inix-sh/inix/pkg/store"
	"github.com/inix-sh/inix/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Load(filesystem.NewMemory(), "")
	require.NoError(t, err)
	return s
}

func TestRender_SingleTemplateRoundTrip(t *testing.T) {
	s := builtinStore(t)

	result, err := render.Render(s, []string{"rust"}, nil, nil)
	require.NoError(t, err)

	descriptor := string(result[types.DescriptorFile])
	for _, pkg := range []string{"cargo", "rustc", "rustfmt", "clippy", "rust-analyzer"} {
		assert.Contains(t, descriptor, "    "+pkg+"\n")
	}
	assert.NotContains(t, descriptor, "{{packages}}", "all markers substituted")
	assert.NotContains(t, descriptor, "{{inputs}}")
}

func TestRender_PackageOrderIsSelectionOrder(t *testing.T) {
	s := builtinStore(t)

	result, err := render.Render(s, []string{"rust", "go"}, []string{"hello"}, nil)
	require.NoError(t, err)

	descriptor := string(result[types.DescriptorFile])
	cargoAt := strings.Index(descriptor, "cargo")
	goAt := strings.Index(descriptor, "    go\n")
	helloAt := strings.Index(descriptor, "hello")

	require.GreaterOrEqual(t, cargoAt, 0)
	require.GreaterOrEqual(t, goAt, 0)
	require.GreaterOrEqual(t, helloAt, 0)
	assert.Less(t, cargoAt, goAt, "rust packages precede go packages")
	assert.Less(t, goAt, helloAt, "extras come last")
}

func TestRender_DuplicateSelectionNamesCollapse(t *testing.T) {
	s := builtinStore(t)

	once, err := render.Render(s, []string{"rust"}, nil, nil)
	require.NoError(t, err)
	twice, err := render.Render(s, []string{"rust", "rust"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, once[types.DescriptorFile], twice[types.DescriptorFile])
}

func TestRender_PackageListsAreNotDeduplicated(t *testing.T) {
	fs := filesystem.NewMemory()
	dir := "/tpl"
	require.NoError(t, fs.MkdirAll(dir+"/alsogo", 0755))
	require.NoError(t, fs.WriteFile(dir+"/alsogo/template.toml", []byte(`packages = ["go"]`), 0644))

	s, err := store.Load(fs, dir)
	require.NoError(t, err)

	result, err := render.Render(s, []string{"go", "alsogo"}, nil, nil)
	require.NoError(t, err)

	descriptor := string(result[types.DescriptorFile])
	assert.Equal(t, 2, strings.Count(descriptor, "    go\n"),
		"a package contributed by two templates stays listed twice")
}

func TestRender_Deterministic(t *testing.T) {
	s := builtinStore(t)

	a, err := render.Render(s, []string{"node", "rust"}, []string{"hello"}, []string{"someInput"})
	require.NoError(t, err)
	b, err := render.Render(s, []string{"node", "rust"}, []string{"hello"}, []string{"someInput"})
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for path, content := range a {
		assert.Equal(t, content, b[path], "path %s must be byte-identical", path)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	s := builtinStore(t)

	result, err := render.Render(s, []string{"rust", "haskell"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
	assert.Nil(t, result, "no partial result on failure")
}

func TestRender_EmptySelection(t *testing.T) {
	s := builtinStore(t)

	_, err := render.Render(s, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptySelection))
}

func TestRender_AuxFileFromFirstTemplate(t *testing.T) {
	s := builtinStore(t)

	result, err := render.Render(s, []string{"node"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte("use nix\n"), result[".envrc"])
}

func TestRender_IdenticalAuxFilesAreNotAConflict(t *testing.T) {
	s := builtinStore(t)

	// base and node both ship the same .envrc bytes
	result, err := render.Render(s, []string{"base", "node"}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, result, ".envrc")
}

func TestRender_ConflictingAuxFiles(t *testing.T) {
	fs := filesystem.NewMemory()
	dir := "/tpl"
	require.NoError(t, fs.MkdirAll(dir+"/custom", 0755))
	require.NoError(t, fs.WriteFile(dir+"/custom/template.toml", []byte(`packages = []`), 0644))
	require.NoError(t, fs.WriteFile(dir+"/custom/.envrc", []byte("use flake\n"), 0644))

	s, err := store.Load(fs, dir)
	require.NoError(t, err)

	_, err = render.Render(s, []string{"node", "custom"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAuxFileConflict))
	assert.Equal(t, ".envrc", errors.GetErrorDetails(err)["path"])
}

func TestRender_SkeletonStructurePreserved(t *testing.T) {
	s := builtinStore(t)

	result, err := render.Render(s, []string{"base"}, nil, nil)
	require.NoError(t, err)

	descriptor := string(result[types.DescriptorFile])
	assert.Contains(t, descriptor, "pkgs.mkShell")
	assert.Contains(t, descriptor, "packages = with pkgs; [")
	assert.Contains(t, descriptor, "inputsFrom = [")
}
