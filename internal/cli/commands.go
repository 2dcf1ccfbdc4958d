package cli

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/inix-sh/inix/internal/version"
	"github.com/inix-sh/inix/pkg/config"
	"github.com/inix-sh/inix/pkg/errors"
	"github.com/inix-sh/inix/pkg/initialize"
	"github.com/inix-sh/inix/pkg/logging"
	"github.com/inix-sh/inix/pkg/paths"
	"github.com/inix-sh/inix/pkg/store"
	"github.com/inix-sh/inix/pkg/types"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "inix",
		Short: "Bootstrap Nix development environments from templates",
		Long: `inix copies and renders named development-environment templates
(a shell.nix descriptor plus auxiliary files such as .envrc) into a
project directory. Multiple templates merge into one environment, and
pre-existing files are handled by an explicit conflict policy.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadStore initializes paths and loads the template store once
func loadStore() (paths.Paths, *store.Store, error) {
	p, err := paths.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize paths: %w", err)
	}

	s, err := store.Load(osFS(), p.UserTemplatesDir())
	if err != nil {
		return nil, nil, err
	}
	return p, s, nil
}

func newInitCmd() *cobra.Command {
	var (
		directory     string
		dryRun        bool
		onConflict    string
		extraPackages []string
		extraInputs   []string
		autoAllow     bool
	)

	cmd := &cobra.Command{
		Use:   "init <template>...",
		Short: "Initialize a directory from one or more templates",
		Long: `Init merges the selected templates into one environment and writes
the result into the destination directory.

When a rendered file already exists, the conflict policy decides what
happens:

  overwrite        replace the existing file
  merge-keep       move the existing file into a numbered backup first
  merge-overwrite  replace rendered files, leave everything else alone
  cancel           stop without writing anything

Without --on-conflict, inix prompts when a conflict occurs (or cancels
when not attached to a terminal).`,
		Example: `  # A Rust environment in the current directory
  inix init rust

  # Rust plus Node, with one extra package, into ./svc
  inix init rust node --package jq -d svc

  # Preview only
  inix init go --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, s, err := loadStore()
			if err != nil {
				return err
			}

			cfg, err := config.Load(p.ConfigFilePath())
			if err != nil {
				return err
			}

			policy, err := resolveFlagPolicy(onConflict, cfg)
			if err != nil {
				return err
			}

			if directory == "" {
				directory, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to read the current working directory: %w", err)
				}
			}

			log.Info().
				Strs("templates", args).
				Str("directory", directory).
				Bool("dry_run", dryRun).
				Msg("Initializing")

			result, err := initialize.Run(initialize.Options{
				Store:         s,
				Selection:     args,
				Directory:     directory,
				ExtraPackages: append(cfg.Defaults.Packages, extraPackages...),
				ExtraInputs:   append(cfg.Defaults.Inputs, extraInputs...),
				Policy:        policy,
				Prompt:        promptForPolicy,
				DryRun:        dryRun,
				FileSystem:    osFS(),
			})
			if err != nil {
				return err
			}

			if result.Cancelled {
				pterm.Info.Println("Cancelled. Nothing was written.")
				return nil
			}

			if dryRun {
				pterm.Info.Println("DRY RUN MODE - No changes were made")
			}

			for _, backup := range result.Backups {
				pterm.Info.Printfln("existing file moved to %s", backup)
			}
			for _, file := range result.Files {
				pterm.Success.Printfln("wrote %s", file)
			}

			if autoAllow && !dryRun && wantsDirenvAllow(result.Files) {
				if err := direnvAllow(directory); err != nil {
					pterm.Warning.Printfln("direnv allow failed: %v", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Directory to initialize (defaults to the current directory)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print a summary of what would be done, but don't do anything")
	cmd.Flags().StringVar(&onConflict, "on-conflict", "", "Conflict policy: overwrite, merge-keep, merge-overwrite, or cancel")
	cmd.Flags().StringArrayVar(&extraPackages, "package", nil, "Extra package entry appended to the environment (repeatable)")
	cmd.Flags().StringArrayVar(&extraInputs, "input", nil, "Extra shell input appended to the environment (repeatable)")
	cmd.Flags().BoolVar(&autoAllow, "auto-allow", false, "Run 'direnv allow' after a successful write (only use with templates you trust)")

	return cmd
}

// resolveFlagPolicy turns the --on-conflict flag, falling back to the
// user config, into a policy. Empty stays unset so the prompt can run.
func resolveFlagPolicy(flag string, cfg *config.Config) (types.ConflictPolicy, error) {
	raw := flag
	if raw == "" {
		raw = cfg.OnConflict
	}
	if raw == "" {
		return types.PolicyUnset, nil
	}
	policy, err := types.ParsePolicy(raw)
	if err != nil {
		return types.PolicyUnset, errors.Wrap(err, errors.ErrInvalidPolicy, "bad conflict policy")
	}
	return policy, nil
}

func newListCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Long:  `List displays every builtin and user template inix can initialize from.`,
		Example: `  # Template names and descriptions
  inix list

  # Full template readmes
  inix list --long`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadStore()
			if err != nil {
				return err
			}

			if long {
				return listLong(cmd, s)
			}

			rows := pterm.TableData{{"NAME", "SOURCE", "DESCRIPTION"}}
			for _, name := range s.List() {
				tmpl, err := s.Get(name)
				if err != nil {
					return err
				}
				source := "user"
				if tmpl.Builtin {
					source = "builtin"
				}
				rows = append(rows, []string{tmpl.Name, source, tmpl.Description})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show each template's full readme")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inix version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
