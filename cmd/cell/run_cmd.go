package main

import (
	"github.com/deepnoodle-ai/cellscript"
	"github.com/spf13/cobra"
)

func (a *app) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Compile and run a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			return cellscript.Eval(cmd.Context(), source, a.options(filename)...)
		},
	}
	addInputFlags(cmd)
	return cmd
}
