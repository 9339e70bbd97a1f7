package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build identity of the stream binary, overridden with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stream release, commit and Go toolchain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stream %s (%s) %s\n", Version, Commit, runtime.Version())
			return err
		},
	}
}
