// Package main provides a demo program for the home view.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/homestats/internal/tui"
	"github.com/Veraticus/homestats/internal/tui/demo"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:   "homestats-demo",
		Short: "Run the home view against simulated statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			delay, _ := cmd.Flags().GetDuration("delay")
			fail, _ := cmd.Flags().GetBool("fail")
			locale, _ := cmd.Flags().GetString("locale")
			currency, _ := cmd.Flags().GetString("currency")

			formatter, err := viewmodel.NewFormatter(locale, currency)
			if err != nil {
				return err
			}

			return tui.Run(cmd.Context(),
				tui.WithFetcher(demo.NewFetcher(delay, fail)),
				tui.WithFormatter(formatter),
				tui.WithTitle("Homebox (demo)"),
				tui.WithSize(120, 40),
			)
		},
	}

	cmd.Flags().Duration("delay", 1500*time.Millisecond, "Simulated fetch latency")
	cmd.Flags().Bool("fail", false, "Make every fetch fail")
	cmd.Flags().String("locale", "zh-CN", "Locale for number formatting")
	cmd.Flags().String("currency", "USD", "ISO 4217 currency code")

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
