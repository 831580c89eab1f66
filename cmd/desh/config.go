package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/desh/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the desh configuration file",
	// Generating a config must work even when the current one is broken.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Write the default configuration",
	Long: `generate writes the default configuration as TOML. Without a path the
file goes to ~/.config/desh/config.toml. An existing file is kept unless
--force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "desh", "config.toml")
}

func init() {
	configGenerateCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
}
