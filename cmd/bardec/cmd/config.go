package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/bardec/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bardec configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [file]",
		Short: "Write the default configuration as YAML",
		Long: `Write the default configuration to a YAML file (default: ./bardec.yaml).
An existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			if err := config.GenerateDefaultConfigFile(filename); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", filename)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "List the configuration search paths",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range config.GetConfigSearchPaths() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Environment prefix: %s_\n", config.EnvPrefix)
		},
	})

	return configCmd
}
