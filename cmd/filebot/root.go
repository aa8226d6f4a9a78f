package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"filebot/internal/config"
	"filebot/internal/errors"
	"filebot/internal/log"
)

// rootOptions holds the flags and the configuration shared by all commands.
type rootOptions struct {
	cfgFile  string
	dryRun   bool
	schedule bool
	once     bool
	verbose  bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "filebot",
		Short: "Sort a directory into folders by rules",
		Long: `filebot moves the files of one target directory into destination folders
chosen by ordered extension and filename rules.

Without --schedule or --once an interactive menu is shown.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			// Back to a console-only logger; this closes the log file.
			log.Configure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.schedule && opts.once {
				return fmt.Errorf("--schedule and --once cannot be combined")
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			switch {
			case opts.once:
				return runOnce(ctx, cmd.OutOrStdout(), opts.cfg, opts.effectiveDryRun())
			case opts.schedule:
				return runSchedule(ctx, opts.cfg, opts.effectiveDryRun())
			default:
				return runMenu(ctx, opts.cfg, opts.verbose)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./config.yaml, then $XDG_CONFIG_HOME/filebot/config.yaml)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "d", false, "show what would be moved without moving anything")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().BoolVarP(&opts.schedule, "schedule", "s", false, "run a pass every schedule.interval until interrupted")
	rootCmd.Flags().BoolVarP(&opts.once, "once", "o", false, "run a single pass and exit")

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewValidateCmd(opts))
	rootCmd.AddCommand(NewWatchCmd(opts))

	return rootCmd
}

// load reads the configuration and sets up logging. Commands that create
// the configuration skip it.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if cmd.Annotations[skipConfigAnnotation] == "true" {
		log.SetDebug(o.verbose)
		return nil
	}

	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		if errors.IsConfigNotFound(err) {
			return fmt.Errorf("%w (run 'filebot init' to create one)", err)
		}
		return err
	}
	o.cfg = cfg
	log.Setup(cfg.LogFile, o.verbose)
	log.LogWithFields(log.F("config", cfg.Path()), log.F("target", cfg.TargetDirectory)).Debug("Configuration loaded")
	return nil
}

// effectiveDryRun is the --dry-run flag when given, the config value otherwise.
func (o *rootOptions) effectiveDryRun() bool {
	return o.dryRun || o.cfg.DryRun
}

const skipConfigAnnotation = "filebot/skip-config"

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
