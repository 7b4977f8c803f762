package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medcouncil/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE:  runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(_ *cobra.Command, _ []string) error {
	path := ".medcouncil.yaml"
	if cfgFile != "" {
		path = cfgFile
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(config.DefaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
