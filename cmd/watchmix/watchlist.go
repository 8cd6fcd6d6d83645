package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist <username>",
	Short: "Show one user's watchlist",
	Long: `Show one user's watchlist.

Examples:
  watchmix watchlist davidlynchfan42
  watchmix watchlist davidlynchfan42 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchlist,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	titles, err := client.Watchlist(args[0])
	if err != nil {
		return fmt.Errorf("watchlist failed: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(titles)
	}

	for _, t := range titles {
		fmt.Printf("%-8s %s\n", t.ID, t.Name)
	}
	fmt.Printf("\n%d titles\n", len(titles))
	return nil
}
