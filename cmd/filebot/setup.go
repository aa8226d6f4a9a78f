package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"filebot/internal/config"
	"filebot/internal/errors"
)

// NewInitCmd creates the init command, which writes a sample configuration.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample configuration file",
		Long: `Write a commented starting configuration with a few example rules.
The file goes to path, or to ./config.yaml when no path is given.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.WriteSample(path, force); err != nil {
				if errors.Is(err, os.ErrExist) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, successText("Sample configuration written to "+path))
			fmt.Fprintln(out, infoText("Edit target_directory, then run 'filebot --once --dry-run' to preview."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// NewValidateCmd creates the validate command. The configuration has already
// been loaded and validated by the root command; this reports what it found.
func NewValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, successText("Configuration OK: "+cfg.Path()))
			fmt.Fprintf(out, "  %s %s\n", boldText("Target:"), cfg.TargetDirectory)
			if info, err := os.Stat(cfg.TargetDirectory); err != nil || !info.IsDir() {
				fmt.Fprintln(out, "  "+warningText("Target directory does not exist yet"))
			}
			fmt.Fprintf(out, "  %s %s\n", boldText("Conflicts:"), cfg.Policy())
			fmt.Fprintf(out, "  %s %v\n", boldText("Dry run:"), cfg.DryRun)
			fmt.Fprintf(out, "  %s %d\n", boldText("Rules:"), len(cfg.Rules))
			for _, rule := range cfg.Rules {
				fmt.Fprintf(out, "    - %s (%d conditions)\n", rule.Name, len(rule.Conditions))
			}
			return nil
		},
	}
}
