package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/bardec/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v, commit, date := version.Info()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "bardec version %s\n", v)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", commit)
			_, _ = fmt.Fprintf(out, "Date: %s\n", date)
		},
	}
}
