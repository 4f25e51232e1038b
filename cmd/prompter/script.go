package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"prompter/internal/config"
	"prompter/internal/store"
)

var scriptOwner string

func scriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Inspect the script library",
	}
	cmd.PersistentFlags().StringVar(&scriptOwner, "owner", "", "Script owner (defaults to scripts.owner)")
	cmd.AddCommand(scriptListCmd())
	cmd.AddCommand(scriptShowCmd())
	cmd.AddCommand(scriptSearchCmd())
	return cmd
}

func scriptListCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(ctx context.Context, db store.Store, owner string) error {
				scripts, err := db.ListScripts(ctx, owner, tag)
				if err != nil {
					return err
				}
				if len(scripts) == 0 {
					fmt.Fprintln(os.Stdout, "No scripts found.")
					return nil
				}
				for _, script := range scripts {
					fmt.Fprintf(os.Stdout, "%s  %s (%d chars)", script.ID, script.Title, script.CharCount)
					if len(script.Tags) > 0 {
						fmt.Fprintf(os.Stdout, " [%s]", strings.Join(script.Tags, ", "))
					}
					fmt.Fprintln(os.Stdout)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to filter")
	return cmd
}

func scriptShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(ctx context.Context, db store.Store, owner string) error {
				script, err := db.GetScript(ctx, args[0], owner)
				if errors.Is(err, store.ErrNotFound) {
					fmt.Fprintf(os.Stdout, "No script found for %q.\n", args[0])
					return nil
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(os.Stdout, "Title: %s\n", script.Title)
				if len(script.Tags) > 0 {
					fmt.Fprintf(os.Stdout, "Tags: %s\n", strings.Join(script.Tags, ", "))
				}
				if script.BackgroundURL != "" {
					fmt.Fprintf(os.Stdout, "Background: %s\n", script.BackgroundURL)
				}
				if script.MusicURL != "" {
					fmt.Fprintf(os.Stdout, "Music: %s\n", script.MusicURL)
				}
				if script.SourceFile != "" {
					fmt.Fprintf(os.Stdout, "Source: %s\n", script.SourceFile)
				}
				fmt.Fprintf(os.Stdout, "Updated: %s\n\n", script.UpdatedAt.Format("2006-01-02 15:04"))
				fmt.Fprintln(os.Stdout, script.Content)
				return nil
			})
		},
	}
}

func scriptSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Full-text search over titles, tags, and script text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withLibrary(func(ctx context.Context, db store.Store, owner string) error {
				results, err := db.SearchScripts(ctx, owner, query)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(os.Stdout, "No results found.")
					return nil
				}
				for _, result := range results {
					fmt.Fprintf(os.Stdout, "%s  %s (score: %.2f)\n", result.ID, result.Title, result.Score)
					if result.Snippet != "" {
						fmt.Fprintf(os.Stdout, "    %s\n", result.Snippet)
					}
				}
				return nil
			})
		},
	}
}

// withLibrary opens the database for the resolved owner and closes it after fn.
func withLibrary(fn func(ctx context.Context, db store.Store, owner string) error) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return err
	}
	owner := strings.TrimSpace(scriptOwner)
	if owner == "" {
		owner = cfg.Scripts.Owner
	}
	if owner == "" {
		return fmt.Errorf("--owner is required when scripts.owner is not set")
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(ctx, db, owner)
}
