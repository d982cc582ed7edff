package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/delg/internal/version"
	"github.com/arthur-debert/delg/pkg/config"
	"github.com/arthur-debert/delg/pkg/demo"
	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/arthur-debert/delg/pkg/logging"
	"github.com/arthur-debert/delg/pkg/stress"
	"github.com/arthur-debert/delg/pkg/style"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "demo",
		Short:   MsgDemoShort,
		Long:    MsgDemoLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := demo.Run(logging.GetLogger("demo"))
			_, err := io.WriteString(cmd.OutOrStdout(), style.RenderSteps(steps))
			return err
		},
	}
}

func newStressCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stress",
		Short:   MsgStressShort,
		Long:    MsgStressLong,
		Example: MsgStressExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Stress
			logger := logging.GetLogger("stress")
			done := logging.LogOperationStart(logger, "stress")
			defer done()

			ctx, cancel := context.WithTimeout(cmd.Context(), sc.Timeout)
			defer cancel()

			report, err := stress.Run(ctx, stress.Options{
				Adders:   sc.Adders,
				Invokers: sc.Invokers,
				Invokes:  sc.Invokes,
				Mortal:   sc.Mortal,
			})
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, MsgErrStressRun).
					WithDetail("timeout", sc.Timeout.String())
			}

			out, err := style.RenderReport(report)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return report.Verify()
		},
	}

	flags := cmd.Flags()
	flags.Int("adders", 0, MsgFlagAdders)
	flags.Int("invokers", 0, MsgFlagInvokers)
	flags.Int("invokes", 0, MsgFlagInvokes)
	flags.Int("mortal", 0, MsgFlagMortal)
	flags.Duration("timeout", 0, MsgFlagTimeout)
	for _, name := range []string{"adders", "invokers", "invokes", "mortal", "timeout"} {
		bindConfigKey(flags, name, "stress."+name)
	}

	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				_, err := io.WriteString(out, config.DefaultContent())
				return err
			}

			if a.cfg.Source != "" {
				fmt.Fprintf(out, MsgConfigSource, a.cfg.Source)
			} else {
				fmt.Fprint(out, MsgConfigNoFile)
			}
			body, err := a.cfg.TOML()
			if err != nil {
				return err
			}
			_, err = out.Write(body)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Find the help command and execute it with "topics" argument
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil && helpCmd.Name() == "help" {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"topics"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"topics"})
					return nil
				}
			}
			return errors.New(errors.ErrInternal, MsgErrHelpMissing)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			fmt.Fprintf(out, MsgBuiltFormat, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "DELG",
				Section: "1",
				Source:  "delg " + version.Version,
				Manual:  "delg manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}

// stdoutFile returns the command's output when it is a file, nil otherwise
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}
