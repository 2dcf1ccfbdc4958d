// Package render merges a selection of templates into the final set
// of output files. The descriptor is produced by substituting the
// concatenated package and input lists into the base skeleton; every
// other file is copied verbatim. Template content is never
// interpreted beyond plain marker replacement.
package render

import (
	"bytes"
	"strings"

	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/logging"
	"github.com/inix-sh/inix/pkg/store"
	"github.com/inix-sh/inix/pkg/types"
)

// Substitution markers in the descriptor skeleton
const (
	PackagesMarker = "{{packages}}"
	InputsMarker   = "{{inputs}}"
)

// entryIndent prefixes each substituted list entry in the descriptor
const entryIndent = "    "

// Render produces the merged output for the given selection.
//
// Selection names are deduplicated preserving first occurrence. The
// declared package and input lists of each selected template are
// concatenated in selection order without deduplication, with the
// caller's extra entries appended last. Auxiliary files come verbatim
// from the first selected template defining them; a second template
// defining the same path with different bytes is an AUX_FILE_CONFLICT.
func Render(s *store.Store, selection []string, extraPackages, extraInputs []string) (types.RenderResult, error) {
	log := logging.GetLogger("render")

	if len(selection) == 0 {
		return nil, errors.New(errors.ErrEmptySelection, "no templates selected")
	}

	names := dedupe(selection)

	var packages, inputs []string
	aux := make(map[string][]byte)
	auxOwner := make(map[string]string)

	for _, name := range names {
		tmpl, err := s.Get(name)
		if err != nil {
			return nil, err
		}

		packages = append(packages, tmpl.Packages...)
		inputs = append(inputs, tmpl.Inputs...)

		for path, content := range tmpl.AuxFiles {
			existing, taken := aux[path]
			if !taken {
				aux[path] = content
				auxOwner[path] = name
				continue
			}
			if !bytes.Equal(existing, content) {
				return nil, errors.Newf(errors.ErrAuxFileConflict,
					"templates %q and %q both define %s with different content",
					auxOwner[path], name, path).
					WithDetail("path", path)
			}
		}
	}

	packages = append(packages, extraPackages...)
	inputs = append(inputs, extraInputs...)

	result := make(types.RenderResult, len(aux)+1)
	result[types.DescriptorFile] = substitute(s.Skeleton(), packages, inputs)
	for path, content := range aux {
		result[path] = append([]byte(nil), content...)
	}

	log.Debug().
		Strs("selection", names).
		Int("packages", len(packages)).
		Int("inputs", len(inputs)).
		Int("files", len(result)).
		Msg("Render complete")

	return result, nil
}

// dedupe removes duplicate names preserving first occurrence
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// substitute replaces the skeleton's markers with the indented entry
// lists. Everything outside the markers is preserved byte-for-byte.
func substitute(skeleton []byte, packages, inputs []string) []byte {
	out := string(skeleton)
	out = strings.ReplaceAll(out, PackagesMarker, joinEntries(packages))
	out = strings.ReplaceAll(out, InputsMarker, joinEntries(inputs))
	return []byte(out)
}

func joinEntries(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entryIndent + entry
	}
	return strings.Join(lines, "\n")
}
