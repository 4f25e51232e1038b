package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prompter/internal/preview"
)

func budgetCmd() *cobra.Command {
	var devices int
	var chars int
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Estimate preview memory use for a device count and script length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if devices < 0 || chars < 0 {
				return fmt.Errorf("--devices and --chars must not be negative")
			}
			return runBudget(devices, chars)
		},
	}
	cmd.Flags().IntVar(&devices, "devices", 1, "Enabled preview devices")
	cmd.Flags().IntVar(&chars, "chars", 0, "Script length in characters")
	return cmd
}

func runBudget(devices, chars int) error {
	usage := preview.CalculateMemoryUsage(devices, chars)
	status := preview.MemoryStatus(usage)
	next := preview.CanEnableDevice(devices, chars)

	fmt.Fprintf(os.Stdout, "Usage:   %.1f MB of %.0f MB (%.0f%%)\n", usage, preview.HardLimit, status.Percentage)
	fmt.Fprintf(os.Stdout, "Level:   %s\n", status.Level)
	if status.Message != "" {
		fmt.Fprintf(os.Stdout, "Message: %s\n", status.Message)
	}
	fmt.Fprintf(os.Stdout, "Max devices for this script: %d\n", preview.MaxDeviceCount(chars))
	if next.CanEnable {
		fmt.Fprintf(os.Stdout, "Another device fits (%.1f MB projected)\n", next.ProjectedUsage)
	} else {
		fmt.Fprintf(os.Stdout, "Another device does not fit: %s\n", next.Message)
	}
	return nil
}
