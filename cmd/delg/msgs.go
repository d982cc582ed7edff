package main

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Exercise a multicast callback registry"
	MsgDemoShort       = "Walk through registry behaviour step by step"
	MsgDemoLong        = "Demo registers, closes, removes and invokes handlers and shows what each step changes."
	MsgStressShort     = "Hammer one registry from many goroutines"
	MsgConfigShort     = "Print the effective configuration"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	// Output
	MsgVersionFormat = "delg version %s\n"
	MsgCommitFormat  = "  commit: %s\n"
	MsgBuiltFormat   = "  built:  %s\n"
	MsgConfigSource  = "# loaded from %s\n"
	MsgConfigNoFile  = "# no config file, defaults and environment only\n"

	// Errors
	MsgErrNoCommand   = "no command specified"
	MsgErrStressRun   = "stress run failed"
	MsgErrHelpMissing = "help command not found"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default ./delg.toml or $XDG_CONFIG_HOME/delg/config.toml)"
	MsgFlagNoColor  = "Disable colored output"
	MsgFlagAdders   = "Number of goroutines each adding one handler"
	MsgFlagInvokers = "Number of goroutines invoking while handlers are added"
	MsgFlagInvokes  = "Invocation passes per invoker"
	MsgFlagMortal   = "Bind every Nth handler to an owner closed mid-run (0 for none)"
	MsgFlagTimeout  = "Abort the run after this long"
	MsgFlagDefaults = "Print the built-in defaults instead of the effective configuration"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/stress-long.txt
	msgStressLongRaw string
	MsgStressLong    = strings.TrimSpace(msgStressLongRaw)

	//go:embed msgs/stress-example.txt
	msgStressExampleRaw string
	MsgStressExample    = strings.TrimRight(msgStressExampleRaw, "\n")

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
