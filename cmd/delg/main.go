package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/arthur-debert/delg/pkg/style"
	"github.com/rs/zerolog/log"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logFailure(err)
		fmt.Fprintln(os.Stderr, style.RenderError(err))
		os.Exit(1)
	}
}

// logFailure records the error code and details in the log file
func logFailure(err error) {
	log.Debug().
		Err(err).
		Str("code", string(errors.GetErrorCode(err))).
		Fields(errors.GetErrorDetails(err)).
		Msg("Command failed")
}
