package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/fs"
	"github.com/fwojciec/sitebrief/scan"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := c.readURLs()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to scan")
	}

	progress := func(e scan.ProgressEvent) {
		switch e.Type {
		case scan.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "scanning %d URLs\n", e.Total)
		case scan.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "[%d/%d] ok      %s\n", e.Completed, e.Total, e.URL)
		case scan.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] failed  %s: %s\n", e.Completed, e.Total, e.URL, e.Error)
		}
	}

	briefs := deps.Scanner.ScanBatch(deps.Ctx, urls, progress)

	var writer sitebrief.BriefWriter
	if c.Out != "" {
		writer = fs.NewWriter(c.Out)
	}

	var succeeded, failed int
	for _, brief := range briefs {
		if brief.Status == sitebrief.ScanSuccess {
			succeeded++
		} else {
			failed++
		}
		if err := deps.Briefs.CreateBrief(deps.Ctx, brief); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: failed to store brief for %s: %s\n", brief.URL, sitebrief.ErrorMessage(err))
		}
		if writer != nil {
			if err := writer.WriteBrief(deps.Ctx, brief); err != nil {
				fmt.Fprintf(deps.Stderr, "warning: failed to write brief for %s: %s\n", brief.URL, err)
			}
		}
	}

	fmt.Fprintf(deps.Stdout, "done: %d succeeded, %d failed\n", succeeded, failed)
	return nil
}

// readURLs reads one URL per line from the file, or stdin for "-". Blank
// lines and #-comments are skipped.
func (c *BatchCmd) readURLs() ([]string, error) {
	var r io.Reader
	if c.File == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
