package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/hollowcast/caldera/internal/application/engine"
	"github.com/hollowcast/caldera/internal/application/game"
	"github.com/hollowcast/caldera/internal/application/scene/playing"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
	"github.com/hollowcast/caldera/internal/infrastructure/save"
	"github.com/hollowcast/caldera/internal/infrastructure/storage"
)

var (
	flagRecord string
	flagSlot   string
	flagNew    bool
	flagWatch  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game",
	Long: `Start playing. Progress autosaves whenever a save point is reached
and on exit, into the slot named by --slot.

Controls:
  Arrows     - Move / enter water, drop through platforms
  Z / Space  - Jump (again in air with the double-jump ability)
  Shift      - Dash (with the dash ability)
  Esc        - Pause
  F5         - Save the recording now (with --record)

Examples:
  caldera play
  caldera play --slot speedrun --new
  caldera play --record run.json
  caldera play --assets ./assets --watch`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Record the input stream to this file")
	playCmd.Flags().StringVar(&flagSlot, "slot", "default", "Save slot to load and autosave into")
	playCmd.Flags().BoolVar(&flagNew, "new", false, "Ignore the existing save and start fresh")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Live-reload tuning.json on change (needs --assets)")
}

// slotSaver adapts the sqlite store to the scene's Saver interface.
type slotSaver struct {
	store *storage.Store
	slot  string
}

func (s slotSaver) Save(blob string) error {
	return s.store.Put(s.slot, blob)
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg, resources, err := loadGameData()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading assets: %v\n", err)
		os.Exit(1)
	}

	world, err := engine.Load(resources, flagMap, cfg.Tuning, cfg.Prefabs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading map: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		log.Warn("could not open save database, progress will not persist", "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var saver playing.Saver
	if store != nil {
		saver = slotSaver{store: store, slot: flagSlot}
		if !flagNew {
			restoreSlot(world, store, flagSlot)
		}
	}

	p := playing.New(world, &cfg.Tuning, saver, flagRecord)

	if flagWatch {
		watcher, tuningCh, werr := watchTuning(flagAssets)
		if werr != nil {
			log.Warn("tuning watch disabled", "err", werr)
		} else {
			defer watcher.Close()
			p.SetTuningUpdates(tuningCh)
		}
	}

	display := cfg.Tuning.Display
	ebiten.SetWindowSize(display.ScreenWidth*display.Scale, display.ScreenHeight*display.Scale)
	ebiten.SetWindowTitle("Caldera")
	ebiten.SetTPS(display.Framerate)

	g := game.New(p, display.ScreenWidth, display.ScreenHeight, 1.0/float64(display.Framerate))
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// restoreSlot applies the slot's save blob if one exists. A corrupt blob is
// discarded with a warning; the run starts fresh.
func restoreSlot(world *engine.World, store *storage.Store, slot string) {
	blob, ok, err := store.Load(slot)
	if err != nil {
		log.Warn("could not read save slot", "slot", slot, "err", err)
		return
	}
	if !ok {
		return
	}
	if err := world.ApplySaveData(blob); err != nil {
		if errors.Is(err, save.ErrCorruptSave) {
			log.Warn("discarding corrupt save", "slot", slot, "err", err)
			return
		}
		log.Warn("could not restore save", "slot", slot, "err", err)
		return
	}
	log.Info("progress restored", "slot", slot)
}

// watchTuning watches tuning.json in the asset directory and emits the
// re-parsed tuning on each write. Only works with on-disk assets.
func watchTuning(dir string) (*fsnotify.Watcher, <-chan config.Tuning, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("--watch needs --assets pointing at a directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	ch := make(chan config.Tuning, 1)
	loader := config.NewLoader(dir)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != "tuning.json" || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				t, err := loader.LoadTuning()
				if err != nil {
					log.Warn("ignoring broken tuning.json", "err", err)
					continue
				}
				// keep only the newest value
				select {
				case <-ch:
				default:
				}
				ch <- *t
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("tuning watch error", "err", err)
			}
		}
	}()
	return watcher, ch, nil
}
