package main

import (
	"fmt"

	"github.com/fwojciec/storescan"
	"github.com/fwojciec/storescan/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	runID := c.RunID
	if runID == "" {
		runs, err := deps.Catalog.FindRuns(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", storescan.ErrorMessage(err))
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(deps.Stderr, "No runs to export. Start one with 'storescan crawl <url>'.")
			return storescan.Errorf(storescan.ENOTFOUND, "no runs")
		}
		runID = runs[0].ID
	}

	products, err := deps.Catalog.FindProducts(deps.Ctx, storescan.ProductFilter{RunID: &runID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", storescan.ErrorMessage(err))
		return err
	}

	if err := fs.NewProductWriter(c.Output).WriteProducts(products); err != nil {
		fmt.Fprintf(deps.Stderr, "error writing %s: %v\n", c.Output, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d products from run %s to %s\n", len(products), runID, c.Output)
	return nil
}
