package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"StockScraper/internal/app"
	"StockScraper/internal/server"
)

func init() {
	rootCmd.AddCommand(runCmd, printCmd, forwardCmd, watchCmd, serveCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape once, notify about stock changes and update the baseline.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		a := newApp()
		defer a.Close()

		res, err := a.RunDiff(cmd.Context())
		if err != nil {
			return err
		}
		printDiff(res)
		return nil
	},
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Scrape once and print the normalized products.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := newApp().RunReturn(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Type", "Price", "Stock", "Image"})
		for _, p := range res.Products {
			t.AppendRow(table.Row{p.Name, p.ProductType, p.Price, p.StockStatus, p.ImageURL})
		}
		t.AppendFooter(table.Row{"", "", "", "Total", res.Count})
		t.Render()
		return nil
	},
}

var forwardCmd = &cobra.Command{
	Use:   "forward [url]",
	Short: "Scrape once and push the products to a webhook.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		res, err := newApp().RunForward(cmd.Context(), target)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "forwarded %d products\n", res.Count)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the diff pipeline on the configured schedule.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		a := newApp()
		defer a.Close()
		return a.Watch(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP trigger endpoints.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := newApp()
		defer a.Close()
		return server.Start(cmd.Context(), a, cfg.Server.Port, logger)
	},
}

func printDiff(res app.Result) {
	d := res.Outcome.Diff
	if d == nil {
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"Scraped", "Changed", "Unchanged", "Unmatched", "Notified", "Updated", "Failed chunks"})
	t.AppendRow(table.Row{res.Count, d.Changed, d.Unchanged, d.Unmatched, d.Notify.Sent, d.Persist.Applied, len(d.Persist.FailedChunks)})
	t.Render()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
