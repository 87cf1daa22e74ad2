// Package main is the entry point for the ideaforge CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ideaforge",
	Short: "Interactive ideation sessions on a brainstorming mindmap",
	Long: `ideaforge drives an interactive ideation session: narrow a problem
statement, explore it through several lenses, and grow a tree of idea
branches that can be expanded, authored by hand, combined into product
concepts, or deleted.

Run 'ideaforge session' to start a session, or 'ideaforge catalog' to
manage the product catalog behind the 'similar' command.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ideaforge.yaml or ~/.config/ideaforge/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ideaforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ideaforge"))
		}
	}

	viper.SetEnvPrefix("IDEAFORGE")
	viper.AutomaticEnv()

	viper.SetDefault("model", "")
	viper.SetDefault("catalog.path", defaultCatalogPath())
	viper.SetDefault("catalog.top_n", 5)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ideaforge-catalog.db"
	}
	return filepath.Join(home, ".config", "ideaforge", "catalog.db")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
