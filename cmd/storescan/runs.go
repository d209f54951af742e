package main

import (
	"fmt"

	"github.com/fwojciec/storescan"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Catalog.FindRuns(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", storescan.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs yet. Start one with 'storescan crawl <url>'.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  pages=%d products=%d  %s\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.ID,
			run.Pages,
			run.Products,
			run.SiteURL,
		)
	}
	return nil
}
