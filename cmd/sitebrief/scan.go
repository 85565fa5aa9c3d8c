package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/fs"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	urls := append([]string{c.URL}, c.Page...)

	var brief *sitebrief.Brief
	if len(urls) == 1 {
		brief = deps.Scanner.Scan(deps.Ctx, c.URL)
	} else {
		brief = deps.Scanner.ScanMerged(deps.Ctx, urls)
	}

	if err := deps.Briefs.CreateBrief(deps.Ctx, brief); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: failed to store brief: %s\n", sitebrief.ErrorMessage(err))
	}

	if c.Out != "" {
		if err := fs.NewWriter(c.Out).WriteBrief(deps.Ctx, brief); err != nil {
			return fmt.Errorf("failed to write brief: %w", err)
		}
	}

	if err := printJSON(deps.Stdout, brief); err != nil {
		return err
	}

	if brief.Status == sitebrief.ScanFailed {
		return fmt.Errorf("scan failed (%s): %s", brief.ErrorCode, brief.Error)
	}
	return nil
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
