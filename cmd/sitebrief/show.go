package main

import (
	"fmt"

	"github.com/fwojciec/sitebrief"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	brief, err := deps.Briefs.FindBriefByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitebrief.ErrorMessage(err))
		return err
	}

	return printJSON(deps.Stdout, brief)
}
