package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchmix/watchmix/internal/session"
)

var queryCmd = &cobra.Command{
	Use:   "query <username>...",
	Short: "Merge several users' watchlists and rank by availability",
	Long: `Merge several users' watchlists and rank titles by how well their
streaming options match the selected services.

Examples:
  watchmix query alice bob
  watchmix query alice bob --intersect
  watchmix query alice bob --services netflix,prime --subscription-only
  watchmix query alice bob --wait 30s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringSlice("services", nil, "Service IDs to match (e.g. netflix,prime)")
	queryCmd.Flags().Bool("subscription-only", false, "Only count subscription options")
	queryCmd.Flags().Bool("intersect", false, "Only show titles on every user's watchlist")
	queryCmd.Flags().Duration("wait", 0, "Poll until all titles resolve or the duration passes")
}

func runQuery(cmd *cobra.Command, args []string) error {
	services, _ := cmd.Flags().GetStringSlice("services")
	subscriptionOnly, _ := cmd.Flags().GetBool("subscription-only")
	intersect, _ := cmd.Flags().GetBool("intersect")
	wait, _ := cmd.Flags().GetDuration("wait")

	client := NewClient(serverURL)

	if err := client.UpdateFilters(session.FilterSelection{
		Services:         services,
		SubscriptionOnly: subscriptionOnly,
		Intersect:        intersect,
	}); err != nil {
		return fmt.Errorf("filters failed: %w", err)
	}

	snap, err := client.SubmitQuery(args)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if wait > 0 {
		snap, err = pollUntilResolved(client, snap.Generation, wait)
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(snap)
	}

	printSnapshot(snap)
	return nil
}

// pollUntilResolved re-reads the collection until no title is loading, the
// deadline passes, or a newer query supersedes ours.
func pollUntilResolved(client *Client, generation uint64, wait time.Duration) (session.Snapshot, error) {
	deadline := time.Now().Add(wait)
	for {
		snap, err := client.Collection()
		if err != nil {
			return session.Snapshot{}, fmt.Errorf("collection failed: %w", err)
		}
		if snap.Generation != generation || !anyLoading(snap) || time.Now().After(deadline) {
			return snap, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func anyLoading(snap session.Snapshot) bool {
	for _, t := range snap.Titles {
		if t.State.Status == session.StatusLoading || t.State.Status == session.StatusIdle {
			return true
		}
	}
	return false
}

func printSnapshot(snap session.Snapshot) {
	for _, ue := range snap.UserErrors {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", ue.Username, ue.Message)
	}

	for _, t := range snap.Titles {
		var status string
		switch t.State.Status {
		case session.StatusSuccess:
			services := make([]string, 0, len(t.State.Options))
			for id := range t.State.Options {
				services = append(services, id)
			}
			status = strings.Join(services, ",")
			if status == "" {
				status = "unavailable"
			}
		case session.StatusError:
			status = "error: " + t.State.Err
		default:
			status = string(t.State.Status)
		}
		fmt.Printf("%3d  %-40s %-20s %s\n", t.Score, t.Name, strings.Join(t.Owners, ","), status)
	}
	fmt.Printf("\n%d titles\n", len(snap.Titles))
}
