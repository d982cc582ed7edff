package main

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/delg/internal/version"
	"github.com/arthur-debert/delg/pkg/cobrax/topics"
	"github.com/arthur-debert/delg/pkg/config"
	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/arthur-debert/delg/pkg/logging"
	"github.com/arthur-debert/delg/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

//go:embed topics
var topicFiles embed.FS

// configKeyAnnotation marks flags that override a configuration key
const configKeyAnnotation = "delg/config-key"

// app carries state shared by all commands of one root command
type app struct {
	verbosity  int
	configPath string
	noColor    bool

	cfg      *config.Config
	renderer *topics.GlamourRenderer
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	a := &app{renderer: topics.NewGlamourRenderer()}

	rootCmd := &cobra.Command{
		Use:     "delg",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newStressCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	source, err := fs.Sub(topicFiles, "topics")
	if err == nil {
		opts := topics.Options{
			Extensions: []string{".md"},
			Renderer:   a.renderer,
		}
		if _, err := topics.Initialize(rootCmd, source, opts); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

// setup loads configuration and configures logging and styling before
// any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := map[string]interface{}{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if keys, ok := f.Annotations[configKeyAnnotation]; ok && len(keys) > 0 {
			overrides[keys[0]] = f.Value.String()
		}
	})

	cfg, err := config.Load(config.LoadOptions{
		Path:      a.configPath,
		Overrides: overrides,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	verbosity := a.verbosity
	if cfg.Logging.Verbosity > verbosity {
		verbosity = cfg.Logging.Verbosity
	}
	logging.SetupLogger(verbosity)

	style.Configure(stdoutFile(cmd), a.noColor)
	a.renderer.Style = cfg.Topics.Style
	a.renderer.Width = cfg.Topics.Width
	if a.noColor {
		a.renderer.Style = "notty"
	}

	log.Debug().
		Str("command", cmd.Name()).
		Str("config", cfg.Source).
		Msg("Command started")
	return nil
}

// bindConfigKey ties a flag to a configuration key so that setting the
// flag overrides the configured value.
func bindConfigKey(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, configKeyAnnotation, []string{key})
}
