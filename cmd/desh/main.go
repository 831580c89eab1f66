// Package main is the entry point for the desh CLI.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/debuglog"
	"github.com/pders01/desh/internal/media"
	"github.com/pders01/desh/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded once per invocation by the root PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "desh",
	Short: "Indian news headlines in the terminal",
	Long: `desh browses Indian news headlines by category, language (English or
Hindi) and state. Results come from NewsAPI or Google News and are kept in a
local history that can be searched offline.

Without a subcommand desh starts the interactive browser.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runBrowser,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/desh/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "database file (overrides database.path)")
	rootCmd.Flags().Bool("quiet", false, "skip the startup banner")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		c.Database.Path = dbPath
	}
	cfg = c
	return nil
}

func runBrowser(cmd *cobra.Command, _ []string) error {
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		tui.ShowBanner(version)
	}

	rt, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	launcher := media.NewLauncher(cfg)
	browser, viewer := launcher.Openers()
	debuglog.Infof("openers: browser=%s image=%s", browser, viewer)

	app := tui.NewApp(cfg, rt.service, tui.Options{
		Store:    rt.store,
		Searcher: rt.searcher,
		Launcher: launcher,
		Filter:   rt.filter,
	})
	defer app.Shutdown()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
