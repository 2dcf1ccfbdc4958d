package cli

import (
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/inix-sh/inix/pkg/filesystem"
	"github.com/inix-sh/inix/pkg/store"
	"github.com/inix-sh/inix/pkg/types"
)

func osFS() types.FS {
	return filesystem.NewOS()
}

// listLong prints every template's readme, rendered as markdown when
// the terminal supports it.
func listLong(cmd *cobra.Command, s *store.Store) error {
	var renderer *glamour.TermRenderer
	if termenv.ColorProfile() != termenv.Ascii {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			renderer = r
		}
	}

	for _, name := range s.List() {
		tmpl, err := s.Get(name)
		if err != nil {
			return err
		}

		body := tmpl.Readme
		if body == "" {
			body = fmt.Sprintf("# %s\n\n%s\n", tmpl.Name, tmpl.Description)
		}

		if renderer != nil {
			if rendered, err := renderer.Render(body); err == nil {
				body = rendered
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), body)
	}

	return nil
}

// wantsDirenvAllow reports whether the written files include an
// .envrc; without one there is nothing for direnv to allow.
func wantsDirenvAllow(files []string) bool {
	return slices.Contains(files, types.EnvrcFile)
}

// direnvAllow runs `direnv allow` in dir
func direnvAllow(dir string) error {
	path, err := exec.LookPath("direnv")
	if err != nil {
		return fmt.Errorf("direnv not found in PATH")
	}

	allow := exec.Command(path, "allow", ".")
	allow.Dir = dir
	out, err := allow.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
