package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ideaforge/ideaforge/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog behind the 'similar' command",
}

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the YC public company dataset into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.Open(viper.GetString("catalog.path"))
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		products, err := catalog.NewFetcher(viper.GetStringSlice("catalog.endpoints")).Fetch(ctx)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, products); err != nil {
			return err
		}

		total, err := store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d companies; catalog now holds %d records.\n", len(products), total)
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a YC or Product Hunt JSON dump into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.Open(viper.GetString("catalog.path"))
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		format, _ := cmd.Flags().GetString("format")

		var n int
		switch format {
		case "yc":
			n, err = store.ImportYC(ctx, args[0])
		case "producthunt", "ph":
			n, err = store.ImportProductHunt(ctx, args[0])
		default:
			return fmt.Errorf("unknown format %q (want yc or producthunt)", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d records from %s.\n", n, args[0])
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog directly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.Open(viper.GetString("catalog.path"))
		if err != nil {
			return err
		}
		defer store.Close()

		query := ""
		for _, arg := range args {
			query += arg + " "
		}

		matches, err := store.Search(context.Background(), query, viper.GetInt("catalog.top_n"))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, m := range matches {
			fmt.Printf("%d. %s (%.2f, %s)\n", i+1, m.Name, m.Score, m.Source)
			if m.Blurb != "" {
				fmt.Printf("   %s\n", m.Blurb)
			}
			if m.URL != "" {
				fmt.Printf("   %s\n", m.URL)
			}
		}
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().String("format", "yc", "dump format: yc or producthunt")
	catalogCmd.AddCommand(catalogFetchCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}
