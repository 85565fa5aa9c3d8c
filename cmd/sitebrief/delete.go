package main

import (
	"fmt"

	"github.com/fwojciec/sitebrief"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Briefs.DeleteBrief(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitebrief.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted brief %s\n", c.ID)
	return nil
}
