// Package store holds the read-only collection of named template
// bundles. Bundles come from two sources: builtins embedded in the
// binary, and user bundles under the inix config directory. User
// bundles shadow builtins of the same name. The store is built once
// at process start; there is no hot reload.
package store

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/logging"
	"github.com/inix-sh/inix/pkg/types"
)

// ReadmeFile is the optional per-bundle description shown by `inix list`
const ReadmeFile = "README.md"

// Store is an immutable set of templates plus the descriptor skeleton
type Store struct {
	templates map[string]*types.Template
	names     []string
	skeleton  []byte
}

// bundleReader abstracts reading a bundle directory, so builtin
// (embed.FS) and user (types.FS) bundles share one loader.
type bundleReader interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
}

// Load builds the store from the embedded builtins plus the user
// template directory. userDir may be empty or absent.
func Load(filesystem types.FS, userDir string) (*Store, error) {
	log := logging.GetLogger("store")

	templates, skeleton, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	log.Debug().Int("builtins", len(templates)).Msg("Loaded builtin templates")

	if userDir != "" {
		userTemplates, userSkeleton, err := loadUserTemplates(filesystem, userDir)
		if err != nil {
			return nil, err
		}
		for name, tmpl := range userTemplates {
			if _, shadows := templates[name]; shadows {
				log.Debug().Str("template", name).Msg("User template shadows builtin")
			}
			templates[name] = tmpl
		}
		// A user base bundle may carry its own skeleton
		if userSkeleton != nil {
			skeleton = userSkeleton
		}
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Store{templates: templates, names: names, skeleton: skeleton}, nil
}

// List returns all template names, sorted
func (s *Store) List() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get returns the template with the given name, or TEMPLATE_NOT_FOUND
func (s *Store) Get(name string) (*types.Template, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return nil, errors.Newf(errors.ErrTemplateNotFound, "template %q not found", name).
			WithDetail("template", name)
	}
	return tmpl, nil
}

// Skeleton returns the descriptor skeleton the renderer substitutes into
func (s *Store) Skeleton() []byte {
	return s.skeleton
}

// loadUserTemplates reads every bundle under userDir. A missing
// directory is not an error; a bundle without a manifest is skipped
// with a warning rather than failing the whole store.
func loadUserTemplates(filesystem types.FS, userDir string) (map[string]*types.Template, []byte, error) {
	log := logging.GetLogger("store")

	info, err := filesystem.Stat(userDir)
	if err != nil || !info.IsDir() {
		return nil, nil, nil
	}

	entries, err := filesystem.ReadDir(userDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read user template directory %s", userDir)
	}

	templates := make(map[string]*types.Template)
	var skeleton []byte

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := filepath.Join(userDir, name)

		if _, err := filesystem.Stat(filepath.Join(dir, ManifestFile)); err != nil {
			log.Warn().Str("dir", dir).Msg("Skipping template directory without manifest")
			continue
		}

		tmpl, files, err := loadBundle(name, userReader{filesystem}, dir)
		if err != nil {
			return nil, nil, err
		}
		tmpl.Path = dir

		if data, ok := files[SkeletonFile]; ok {
			if name == "base" {
				skeleton = data
			} else {
				log.Warn().Str("template", name).Msg("Ignoring descriptor skeleton outside the base bundle")
			}
			delete(files, SkeletonFile)
		}
		tmpl.AuxFiles = files

		templates[name] = tmpl
	}

	return templates, skeleton, nil
}

// loadBundle reads one bundle directory into a Template plus its raw
// file map. The caller decides what to do with the skeleton entry.
func loadBundle(name string, reader bundleReader, dir string) (*types.Template, map[string][]byte, error) {
	entries, err := reader.ReadDir(dir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read template directory %s", dir)
	}

	tmpl := &types.Template{Name: name}
	files := make(map[string][]byte)
	sawManifest := false

	for _, entry := range entries {
		if entry.IsDir() {
			// bundles are flat; nested directories are ignored
			continue
		}
		data, err := reader.ReadFile(joinLike(dir, entry.Name()))
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s in template %q", entry.Name(), name)
		}

		switch entry.Name() {
		case ManifestFile:
			m, err := parseManifest(name, data)
			if err != nil {
				return nil, nil, err
			}
			tmpl.Description = m.Description
			tmpl.Packages = m.Packages
			tmpl.Inputs = m.Inputs
			sawManifest = true
		case ReadmeFile:
			tmpl.Readme = string(data)
		default:
			files[entry.Name()] = data
		}
	}

	if !sawManifest {
		return nil, nil, errors.Newf(errors.ErrTemplateInvalid, "template %q has no %s", name, ManifestFile)
	}

	return tmpl, files, nil
}

// userReader adapts types.FS to bundleReader
type userReader struct{ fsys types.FS }

func (r userReader) ReadDir(name string) ([]fs.DirEntry, error) { return r.fsys.ReadDir(name) }
func (r userReader) ReadFile(name string) ([]byte, error)       { return r.fsys.ReadFile(name) }

// joinLike joins with forward slashes, which both embed.FS and the
// OS filesystems in use here accept.
func joinLike(dir, name string) string {
	return dir + "/" + name
}
