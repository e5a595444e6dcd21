package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"StockScraper/internal/database"
	"StockScraper/internal/models"
)

func init() {
	baselineAddCmd.Flags().StringVar(&addPrice, "price", "", "initial price")
	baselineAddCmd.Flags().StringVar(&addStock, "stock", string(models.Unknown), "initial stock status")
	baselineCmd.AddCommand(baselineListCmd, baselineAddCmd)
	rootCmd.AddCommand(baselineCmd)
}

var (
	addPrice string
	addStock string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect and seed the baseline store.",
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every baseline record.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := newApp()
		defer a.Close()

		store, err := a.Store(cmd.Context())
		if err != nil {
			return err
		}
		records, err := store.ReadAll(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Item", "Price", "Stock"})
		for _, r := range records {
			t.AppendRow(table.Row{r.ID, r.Name, r.Price, r.Stock})
		}
		t.Render()
		return nil
	},
}

var baselineAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Start tracking a product in the SQL baseline store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.Close()

		store, err := a.Store(cmd.Context())
		if err != nil {
			return err
		}
		repo, ok := store.(*database.DBRepository)
		if !ok {
			return errors.New("baseline add needs a sqlite or libsql store")
		}

		rec, err := repo.Add(cmd.Context(), args[0], addPrice, models.StockStatus(addStock))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "added %s (%s)\n", rec.Name, rec.ID)
		return nil
	},
}
