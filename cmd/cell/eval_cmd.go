package main

import (
	"strings"

	"github.com/deepnoodle-ai/cellscript"
	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/compiler"
	"github.com/spf13/cobra"
)

func (a *app) evalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <code>",
		Short: "Evaluate code given on the command line",
		Long: `Evaluate code given on the command line.

A program consisting of a single expression prints its value:

  cell eval "2 * (3 + 4)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := strings.Join(args, " ")
			opts := a.options("<eval>")
			arena, root, err := cellscript.Parse(cmd.Context(), source, opts...)
			if err != nil {
				return err
			}
			defer arena.Release()
			if expr, ok := soleExpression(arena, root); ok {
				root = expr
			}
			code, err := compiler.Compile(arena, root,
				compiler.WithFilename("<eval>"),
				compiler.WithSource(source),
				compiler.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return cellscript.Run(cmd.Context(), code, opts...)
		},
	}
}

// soleExpression returns the expression cell of a program made of exactly
// one expression statement.
func soleExpression(arena *ast.Arena, root ast.Ref) (ast.Ref, bool) {
	node := arena.Get(root)
	if node.Kind != ast.Statements || node.Left == ast.NoRef {
		return ast.NoRef, false
	}
	first := arena.Get(node.Left)
	if first.Next != ast.NoRef || !first.Kind.IsExpression() {
		return ast.NoRef, false
	}
	return node.Left, true
}
