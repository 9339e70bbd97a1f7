package cli

import (
	"github.com/spf13/cobra"

	"github.com/neoclaw-ai/stream/internal/demo"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Play the greeter and button scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return demo.Run(cmd.OutOrStdout(), a.registry)
		},
	}
}
