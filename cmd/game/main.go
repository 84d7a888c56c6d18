// caldera is a deterministic 2D platformer built on a fixed-quantum
// simulation core.
//
// Usage:
//
//	caldera play                 - Play the bundled map
//	caldera replay <file>        - Re-run a recorded session headless
//	caldera slots list           - List save slots
//	caldera slots clear <slot>   - Delete a save slot
//
// Global flags:
//
//	--assets <dir>  - Load map and config from a directory instead of the embedded assets
//	--map <name>    - Map file to load (default: cavern.tmx)
//	--db <path>     - Save database path (default: ~/.caldera/saves.db)
//	--log-level     - Log verbosity: debug, info, warn, error
package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hollowcast/caldera/assets"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

var (
	// Global flags
	flagAssets   string
	flagMap      string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "caldera",
	Short: "Caldera - a deterministic 2D platformer",
	Long: `Caldera is a tile-based platformer whose whole simulation runs in
fixed integration quanta: the same inputs always produce the same run.

Examples:
  caldera play
  caldera play --record run.json
  caldera play --assets ./assets --watch
  caldera replay run.json --expect 1a2b3c4d5e6f7081
  caldera slots list`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if lvl, err := log.ParseLevel(flagLogLevel); err == nil {
			log.SetLevel(lvl)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAssets, "assets", "", "Asset directory override (default: embedded assets)")
	rootCmd.PersistentFlags().StringVar(&flagMap, "map", assets.DefaultMap, "Map file to load")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.caldera/saves.db", "Path to save database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(slotsCmd)
}

// assetFS returns the asset filesystem: the embedded bundle, or the
// directory named by --assets.
func assetFS() fs.FS {
	if flagAssets != "" {
		return os.DirFS(flagAssets)
	}
	return assets.FS
}

// loadGameData loads config and raw map resources from the asset filesystem.
func loadGameData() (*config.Config, map[string][]byte, error) {
	fsys := assetFS()
	cfg, err := config.NewFSLoader(fsys, flagAssets).LoadAll()
	if err != nil {
		return nil, nil, err
	}
	resources, err := readResources(fsys)
	if err != nil {
		return nil, nil, err
	}
	return cfg, resources, nil
}

// readResources reads every top-level asset file into a name -> bytes map,
// the shape the level loader consumes.
func readResources(fsys fs.FS) (map[string][]byte, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %s: %w", e.Name(), err)
		}
		out[e.Name()] = b
	}
	return out, nil
}
