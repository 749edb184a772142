package main

import (
	"fmt"

	"github.com/deepnoodle-ai/cellscript"
	"github.com/deepnoodle-ai/cellscript/dis"
	"github.com/spf13/cobra"
)

func (a *app) disCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble the bytecode of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			code, err := cellscript.Compile(cmd.Context(), source, a.options(filename)...)
			if err != nil {
				return err
			}
			instructions, err := dis.Disassemble(code)
			if err != nil {
				return err
			}
			stats, _ := cmd.Flags().GetBool("stats")
			if a.jsonOutput() {
				if stats {
					return a.writeJSON(map[string]any{
						"instructions": instructions,
						"stats":        code.Stats(),
					})
				}
				return a.writeJSON(instructions)
			}
			if err := dis.Print(instructions, a.stdout); err != nil {
				return err
			}
			if stats {
				s := code.Stats()
				fmt.Fprintf(a.stdout, "\ninstructions: %d  constants: %d  globals: %d  functions: %d  source bytes: %d\n",
					s.InstructionCount, s.ConstantCount, s.GlobalCount, s.FunctionCount, s.SourceBytes)
			}
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().Bool("stats", false, "print code statistics after the listing")
	return cmd
}
