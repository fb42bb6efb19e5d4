package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the woodway version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]string{"version": appVersion})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "woodway %s\n", appVersion)
			return nil
		},
	}
}
