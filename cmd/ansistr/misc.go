package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/ansistr/internal/config/loader"
)

func newVersionCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "ansistr %s\n", version)
			fmt.Fprintf(c.out, "Commit: %s\n", commit)
			fmt.Fprintf(c.out, "Built: %s\n", date)
		},
	}
}

func newConfigCommand(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config [OPTIONS]",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loader.FormatFor("config." + format)
			if err != nil {
				return err
			}
			data, err := c.cfg.Encode(f)
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format (toml, yaml)")

	return cmd
}
