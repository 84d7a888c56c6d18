package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hollowcast/caldera/internal/application/engine"
	"github.com/hollowcast/caldera/internal/application/replay"
)

var flagExpect string

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Re-run a recorded session headless",
	Long: `Replay a recorded input session against a fresh world, without
graphics, and print the final state hash. Because the simulation is
deterministic, the hash is the same on every machine; --expect turns the
command into a regression check.

Examples:
  caldera replay run.json
  caldera replay run.json --expect 1a2b3c4d5e6f7081`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagExpect, "expect", "", "Fail unless the final state hash equals this hex value")
}

func runReplay(cmd *cobra.Command, args []string) {
	session, err := replay.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading replay: %v\n", err)
		os.Exit(1)
	}

	cfg, resources, err := loadGameData()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading assets: %v\n", err)
		os.Exit(1)
	}

	mapName := session.Map
	if mapName == "" {
		mapName = flagMap
	}
	world, err := engine.Load(resources, mapName, cfg.Tuning, cfg.Prefabs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading map: %v\n", err)
		os.Exit(1)
	}

	hash := replay.Run(world, *session)
	fmt.Printf("map:    %s\n", mapName)
	fmt.Printf("frames: %d\n", len(session.Frames))
	fmt.Printf("hash:   %s\n", formatHash(hash))

	if flagExpect != "" {
		want, err := parseHash(flagExpect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad --expect value: %v\n", err)
			os.Exit(1)
		}
		if hash != want {
			fmt.Fprintf(os.Stderr, "Hash mismatch: got %s, want %s\n", formatHash(hash), formatHash(want))
			os.Exit(1)
		}
		fmt.Println("hash matches")
	}
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

func parseHash(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 64)
}
