package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hollowcast/caldera/internal/infrastructure/save"
	"github.com/hollowcast/caldera/internal/infrastructure/storage"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Manage save slots",
}

var slotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List save slots",
	Args:  cobra.NoArgs,
	Run:   runSlotsList,
}

var slotsClearCmd = &cobra.Command{
	Use:   "clear <slot>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	Run:   runSlotsClear,
}

func init() {
	slotsCmd.AddCommand(slotsListCmd)
	slotsCmd.AddCommand(slotsClearCmd)
}

func runSlotsList(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing slots: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No save slots.")
		return
	}

	fmt.Printf("%-16s %-20s %s\n", "SLOT", "UPDATED", "PROGRESS")
	for _, e := range entries {
		fmt.Printf("%-16s %-20s %s\n", e.Slot, e.UpdatedAt.Format("2006-01-02 15:04:05"), describeBlob(e.Blob))
	}
}

// describeBlob summarizes a save blob for the listing.
func describeBlob(blob string) string {
	d, err := save.Decode(blob)
	if err != nil {
		return "(corrupt)"
	}
	return fmt.Sprintf("hp %d, %d coins, %d rare, %d abilities",
		d.HP, len(d.Coins), len(d.RareCoins), len(d.PowerUps))
}

func runSlotsClear(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Clear(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing slot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cleared slot %q.\n", args[0])
}
