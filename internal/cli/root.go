package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/pkg/logger"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

type rootOptions struct {
	logLevel string
}

// NewRootCmd builds the timetablectl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "timetablectl",
		Short:         "Run the timetable engine offline against JSON plans",
		Version:       fmt.Sprintf("%s (%s)", Version, CommitSHA),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level written to stderr")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newGridCmd(opts))
	root.AddCommand(newTokenCmd())
	root.AddCommand(newMigrateCmd(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) logger() *zap.Logger {
	l, err := logger.NewCLI(o.logLevel)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openOutput returns stdout for an empty path.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
