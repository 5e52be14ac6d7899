// Package cli implements the actionz command line.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/actionz/internal/logging"
)

// app is the state shared by every command.
type app struct {
	out      io.Writer
	errOut   io.Writer
	logLevel string
	logger   *zap.Logger
}

// NewRootCmd builds the command tree. Command output goes to out; logs go
// to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logLevel: logging.LevelWarn, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "actionz",
		Short:         "Rate adapters and fetch pipelines for interactive elements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := logging.NewWithWriter(a.logLevel, a.errOut)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", a.logLevel, "Log level: debug|info|warn|error|off")

	root.AddCommand(
		newReplayCmd(a),
		newLookupCmd(a),
		newServeCmd(a),
	)
	return root
}
