package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/scan"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Scanner *scan.Scanner
	Briefs  sitebrief.BriefService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Timeout  time.Duration `short:"t" default:"10s" help:"Plain HTTP fetch timeout; rendered strategies get three times this"`
	NoRender bool          `help:"Disable browser-rendered retrieval strategies"`
	Verbose  bool          `short:"v" help:"Log retrieval and inference operations to stderr"`

	Scan   ScanCmd   `cmd:"" help:"Scan a website and produce a brand brief"`
	Batch  BatchCmd  `cmd:"" help:"Scan many URLs from a file"`
	List   ListCmd   `cmd:"" help:"List stored briefs"`
	Show   ShowCmd   `cmd:"" help:"Show a stored brief as JSON"`
	Delete DeleteCmd `cmd:"" help:"Delete a stored brief"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	URL   string   `arg:"" help:"Website URL to scan"`
	Page  []string `short:"P" name:"page" help:"Additional page of the same site to merge in (repeatable)"`
	Out   string   `short:"o" help:"Directory to write the brief as a JSON file"`
	Cache bool     `help:"Cache fetched pages in the database"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string `arg:"" help:"File with one URL per line, or - for stdin"`
	Out         string `short:"o" help:"Directory to write briefs as JSON files"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent scan limit"`
	Cache       bool   `help:"Cache fetched pages in the database"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Status string `help:"Filter by status (success or failed)"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of briefs to list"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Brief ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID string `arg:"" help:"Brief ID"`
}
