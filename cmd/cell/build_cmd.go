package main

import (
	"errors"
	"os"
	"strings"

	"github.com/deepnoodle-ai/cellscript"
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/spf13/cobra"
)

func (a *app) buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Compile a program to a bytecode file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				if len(args) == 0 {
					return usageError(errors.New("an output path is required (--out)"))
				}
				out = strings.TrimSuffix(args[0], ".cell") + ".cellc"
			}
			code, err := cellscript.Compile(cmd.Context(), source, a.options(filename)...)
			if err != nil {
				return err
			}
			data, err := bytecode.Marshal(code)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return usageError(err)
			}
			a.logger.Info().Str("path", out).Int("bytes", len(data)).Msg("wrote bytecode")
			return nil
		},
	}
	addInputFlags(cmd)
	cmd.Flags().String("out", "", "output path (default: input path with a .cellc extension)")
	return cmd
}

func (a *app) execCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <file>",
		Short: "Run a bytecode file produced by build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return usageError(err)
			}
			code, err := bytecode.Unmarshal(data)
			if err != nil {
				return usageError(err)
			}
			return cellscript.Run(cmd.Context(), code, a.options(code.Filename())...)
		},
	}
}
