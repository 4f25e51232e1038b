package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const presetsTemplate = `version: 1
presets:
  - name: broadcast
    description: Large type for studio monitors
    typography:
      fontSize: 64
      lineHeight: 1.4
    layout:
      mirrorHorizontal: true
  - name: rehearsal
    description: Compact layout for practice runs
    typography:
      fontSize: 36
    colors:
      background: "#101010"
`

func initCmd() *cobra.Command {
	var projectName string
	var owner string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new prompter project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, owner)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&owner, "owner", "local", "User that owns imported scripts")
	return cmd
}

func runInit(projectName, owner string) error {
	for _, path := range []string{configPath, presetsPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	configContents := fmt.Sprintf(`project: %s
version: 1

database:
  dsn: sqlite://prompter.db

server:
  addr: ":8080"
  mcp: false

storage:
  driver: file
  dir: .prompter/state
  watch: true

auth:
  tokens:
    - token: change-me
      user: %s

scripts:
  owner: %s
  paths:
    - ./scripts/
  exclude:
    - ./scripts/drafts/
`, projectName, owner, owner)

	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(presetsPath, []byte(presetsTemplate), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", presetsPath, err)
	}

	fmt.Fprintf(os.Stdout, "Created %s and %s\n", configPath, presetsPath)
	return nil
}
