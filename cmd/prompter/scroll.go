package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"prompter/internal/preview"
)

func scrollCmd() *cobra.Command {
	defaults := preview.DefaultScrollConfig()
	var scrollTop float64
	cfg := defaults
	cmd := &cobra.Command{
		Use:   "scroll <file>",
		Short: "Show which paragraphs of a script are rendered at a scroll offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScroll(args[0], scrollTop, cfg)
		},
	}
	cmd.Flags().Float64Var(&scrollTop, "scroll-top", 0, "Scroll offset in pixels")
	cmd.Flags().Float64Var(&cfg.ViewportHeight, "viewport", defaults.ViewportHeight, "Viewport height in pixels")
	cmd.Flags().Float64Var(&cfg.ContainerWidth, "width", defaults.ContainerWidth, "Container width in pixels")
	cmd.Flags().Float64Var(&cfg.FontSize, "font-size", defaults.FontSize, "Font size in pixels")
	cmd.Flags().IntVar(&cfg.Overscan, "overscan", defaults.Overscan, "Extra paragraphs rendered on each side")
	return cmd
}

func runScroll(path string, scrollTop float64, cfg preview.ScrollConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	cfg.Overscan = max(cfg.Overscan, 0)

	items := preview.ParseContentToItems(string(data))
	window := preview.CalculateVisibleItems(items, scrollTop, cfg)

	fmt.Fprintf(os.Stdout, "Paragraphs: %d, total height %.0f px\n", len(items), window.TotalHeight)
	fmt.Fprintf(os.Stdout, "Rendering %d to %d (offset %.0f px)\n", window.StartIndex, window.EndIndex, window.OffsetY)
	for _, item := range window.Items {
		fmt.Fprintf(os.Stdout, "  [%d] top=%.0f height=%.0f lines=%d  %s\n", item.Index, item.Top, item.Height, item.Lines, excerpt(item.Text, 48))
	}
	return nil
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
