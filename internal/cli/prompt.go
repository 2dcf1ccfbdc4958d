package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/inix-sh/inix/pkg/types"
)

// promptForPolicy asks the user how to treat colliding files. Outside
// a terminal there is nobody to ask, so the safe answer is cancel.
func promptForPolicy(conflicts []string) (types.ConflictPolicy, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return types.PolicyCancel, nil
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("%d file(s) already exist: %s", len(conflicts), strings.Join(conflicts, ", "))).
				Description("How should inix proceed?").
				Options(
					huh.NewOption("Move existing files into a numbered backup, then write (merge-keep)", string(types.PolicyMergeKeep)),
					huh.NewOption("Overwrite rendered files, leave everything else untouched (merge-overwrite)", string(types.PolicyMergeOverwrite)),
					huh.NewOption("Overwrite everything the render produces (overwrite)", string(types.PolicyOverwrite)),
					huh.NewOption("Cancel without writing anything", string(types.PolicyCancel)),
				).
				Value(&choice),
		),
	)

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return types.PolicyCancel, nil
		}
		return types.PolicyUnset, err
	}

	return types.ConflictPolicy(choice), nil
}
