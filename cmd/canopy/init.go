package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"canopy/internal/config"
	"canopy/internal/hosts"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .canopy directory with default configuration",
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	canopyDir := config.CanopyDir(repoRoot)

	if _, err := os.Stat(filepath.Join(canopyDir, "config.json")); err == nil {
		fmt.Println("Already initialized.")
		return
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(repoRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	if err := hosts.DefaultConfig().Save(canopyDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing hosts.toml: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Initialized %s\n", canopyDir)
}
