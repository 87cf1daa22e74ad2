package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/catalog"
	"github.com/ideaforge/ideaforge/internal/engine"
	"github.com/ideaforge/ideaforge/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start an interactive ideation session",
	Long: `Start an interactive ideation session.

The session first narrows your problem into a confirmed "How might we"
statement, then opens three exploration lenses. Type 'help' inside the
session for the command grammar.`,
	Run: func(cmd *cobra.Command, args []string) {
		completer, err := ai.NewClient(ai.ClientConfig{
			Model: viper.GetString("model"),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// The catalog is optional; without one the 'similar' command just
		// reports that no catalog is configured.
		var cat *catalog.Store
		if path := viper.GetString("catalog.path"); path != "" {
			if opened, err := catalog.Open(path); err == nil {
				cat = opened
				defer cat.Close()
			} else {
				fmt.Fprintf(os.Stderr, "Warning: product catalog unavailable: %v\n", err)
			}
		}

		repl, err := session.NewREPL(&session.Config{
			Session: engine.NewSession(completer),
			Catalog: cat,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create session: %v\n", err)
			os.Exit(1)
		}

		if err := repl.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
