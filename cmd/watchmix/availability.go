package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability <movie-id>",
	Short: "Show streaming options for one movie",
	Long: `Show streaming options for one movie by its watchlist ID.

Examples:
  watchmix availability 51568
  watchmix availability 51568 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAvailability,
}

func init() {
	rootCmd.AddCommand(availabilityCmd)
}

func runAvailability(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	options, err := client.Availability(args[0])
	if err != nil {
		return fmt.Errorf("availability failed: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(options)
	}

	if len(options) == 0 {
		fmt.Println("Not available on any service")
		return nil
	}

	for _, o := range options {
		line := fmt.Sprintf("%-16s %-12s", o.ServiceID, o.Kind)
		if o.Quality != "" {
			line += " " + o.Quality
		}
		if o.Price != "" {
			line += " " + o.Price
		}
		fmt.Println(line)
	}
	return nil
}
