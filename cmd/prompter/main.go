package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	presetsPath string
)

func main() {
	root := &cobra.Command{
		Use:           "prompter",
		Short:         "Teleprompter workspace server and script library",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "prompter.yaml", "Project config file")
	root.PersistentFlags().StringVar(&presetsPath, "presets", "presets.yaml", "Appearance presets file")
	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(importCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(scriptCmd())
	root.AddCommand(budgetCmd())
	root.AddCommand(scrollCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
