package store

import (
	"embed"
	"io/fs"
	"path"

	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/types"
)

// Builtin bundles compiled into the binary. The all: prefix pulls in
// dotfiles such as .envrc, which embed skips by default.
//
//go:embed all:templates
var builtinFS embed.FS

// SkeletonFile is the descriptor skeleton inside the base bundle
const SkeletonFile = "shell.nix.template"

// loadBuiltins parses every embedded bundle into a Template
func loadBuiltins() (map[string]*types.Template, []byte, error) {
	entries, err := builtinFS.ReadDir("templates")
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrInternal, "embedded templates are unreadable")
	}

	templates := make(map[string]*types.Template, len(entries))
	var skeleton []byte

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := path.Join("templates", name)

		tmpl, files, err := loadBundle(name, fsReader{builtinFS}, dir)
		if err != nil {
			return nil, nil, err
		}
		tmpl.Builtin = true

		if data, ok := files[SkeletonFile]; ok {
			if name == "base" {
				skeleton = data
			}
			delete(files, SkeletonFile)
		}
		tmpl.AuxFiles = files

		templates[name] = tmpl
	}

	if skeleton == nil {
		return nil, nil, errors.New(errors.ErrInternal, "embedded base bundle is missing its descriptor skeleton")
	}

	return templates, skeleton, nil
}

// fsReader adapts an fs.FS to the bundleReader used by loadBundle
type fsReader struct{ fsys fs.FS }

func (r fsReader) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(r.fsys, name)
}

func (r fsReader) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(r.fsys, name)
}
