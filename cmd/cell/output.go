package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
)

func (a *app) jsonOutput() bool {
	return a.v.GetString("output") == "json"
}

// writeJSON writes v to stdout, highlighted when color is enabled.
func (a *app) writeJSON(v any) error {
	var (
		data []byte
		err  error
	)
	if color.NoColor {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = prettyjson.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}
