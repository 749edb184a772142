package main

import (
	"fmt"

	"github.com/deepnoodle-ai/cellscript"
	"github.com/spf13/cobra"
)

func (a *app) astCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the syntax tree of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			arena, root, err := cellscript.Parse(cmd.Context(), source, a.options(filename)...)
			if err != nil {
				return err
			}
			defer arena.Release()
			if a.jsonOutput() {
				return a.writeJSON(arena.Tree(root))
			}
			_, err = fmt.Fprintln(a.stdout, arena.Render(root))
			return err
		},
	}
	addInputFlags(cmd)
	return cmd
}
