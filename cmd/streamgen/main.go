// Package main is the entry point for the streamgen proxy generator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neoclaw-ai/stream/internal/logging"
	"github.com/neoclaw-ai/stream/internal/streamgen"
)

func newRootCmd() *cobra.Command {
	var source, output string

	cmd := &cobra.Command{
		Use:           "streamgen",
		Short:         "Generate stream proxies for the channel interfaces of a Go file",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if source == "" {
				// go generate exports the file holding the directive.
				source = os.Getenv("GOFILE")
			}
			written, err := streamgen.Generate(source, output)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "streamgen: wrote %s\n", written)
			return err
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Go file declaring channel interfaces (default $GOFILE)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <source>_stream.go)")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Logger().Error("streamgen failed", "err", err)
		os.Exit(1)
	}
}
