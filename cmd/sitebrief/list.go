package main

import (
	"fmt"

	"github.com/fwojciec/sitebrief"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := sitebrief.BriefFilter{Limit: c.Limit}
	if c.Status != "" {
		status := sitebrief.ScanStatus(c.Status)
		if status != sitebrief.ScanSuccess && status != sitebrief.ScanFailed {
			return fmt.Errorf("invalid status %q: must be success or failed", c.Status)
		}
		filter.Status = &status
	}

	briefs, err := deps.Briefs.FindBriefs(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitebrief.ErrorMessage(err))
		return err
	}

	if len(briefs) == 0 {
		fmt.Fprintln(deps.Stdout, "No briefs found. Use 'sitebrief scan' to create one.")
		return nil
	}

	for _, b := range briefs {
		grade := string(b.QualityGrade)
		if grade == "" {
			grade = "-"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %s  %s\n", b.ID, b.Status, grade, b.URL)
	}

	return nil
}
