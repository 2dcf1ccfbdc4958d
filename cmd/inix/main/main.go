package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/inix-sh/inix/internal/cli"
	"github.com/inix-sh/inix/pkg/errors"
)

var errorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "196"})

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))

		// planning failures are user-addressable; point at the right flag
		if errors.IsErrorCode(err, errors.ErrTemplateNotFound) {
			fmt.Fprintln(os.Stderr, "Run 'inix list' to see the available templates.")
		}

		os.Exit(1)
	}
}
