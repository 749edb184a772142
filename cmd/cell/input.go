package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// addInputFlags registers the flags shared by every command that reads a
// program.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "program source to use instead of a file")
	cmd.Flags().Bool("stdin", false, "read the program from stdin")
}

// readSource determines what code is to be used. There are three
// possibilities: --code, --stdin, or a path given as the first argument.
// The returned filename is used in error locations.
func (a *app) readSource(cmd *cobra.Command, args []string) (string, string, error) {
	codeSet := cmd.Flags().Changed("code")
	stdinSet, _ := cmd.Flags().GetBool("stdin")
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeSet, stdinSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", "", usageError(errors.New("multiple input sources specified"))
	}
	if count == 0 {
		return "", "", usageError(errors.New("no input provided"))
	}

	switch {
	case stdinSet:
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", "", usageError(fmt.Errorf("reading stdin: %w", err))
		}
		return string(data), "<stdin>", nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", usageError(err)
		}
		return string(data), args[0], nil
	}
	code, _ := cmd.Flags().GetString("code")
	return code, "<code>", nil
}
