package main

import (
	"fmt"

	"github.com/deepnoodle-ai/cellscript"
	"github.com/spf13/cobra"
)

func (a *app) docsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "docs [category | topic]",
		Short: "Show language documentation",
		Long: `Show language documentation.

Categories: builtins, syntax, errors. Any builtin name or error kind may be
given as a topic.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var docs *cellscript.Documentation
			switch {
			case len(args) == 0:
				docs = cellscript.Docs()
			case isDocsCategory(args[0]):
				docs = cellscript.Docs(cellscript.DocsCategory(args[0]))
			default:
				docs = cellscript.Docs(cellscript.DocsTopic(args[0]))
			}
			if data, ok := docs.Data().(map[string]any); ok {
				if msg, ok := data["error"].(string); ok {
					return usageError(fmt.Errorf("%s", msg))
				}
			}
			return a.writeJSON(docs.Data())
		},
	}
}

func isDocsCategory(s string) bool {
	switch s {
	case "builtins", "syntax", "errors":
		return true
	}
	return false
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput() {
				return a.writeJSON(map[string]string{
					"version":  version,
					"language": cellscript.Version,
					"commit":   commit,
					"date":     date,
				})
			}
			_, err := fmt.Fprintf(a.stdout, "cell %s (language %s, commit %s, built %s)\n",
				version, cellscript.Version, commit, date)
			return err
		},
	}
}
