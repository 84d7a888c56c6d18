// Package playing provides the main gameplay scene.
package playing

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/hollowcast/caldera/internal/application/engine"
	"github.com/hollowcast/caldera/internal/application/scene"
	"github.com/hollowcast/caldera/internal/application/state"
	"github.com/hollowcast/caldera/internal/application/system"
	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

// Colors for rendering
var (
	colorBG       = color.RGBA{26, 26, 46, 255}
	colorFlash    = color.RGBA{255, 255, 255, 200}
	colorUnknown  = color.RGBA{255, 0, 255, 255}
	colorHealthBG = color.RGBA{60, 60, 60, 255}
	colorHealthFG = color.RGBA{100, 200, 100, 255}

	spriteColors = map[string]color.RGBA{
		"solid":           {80, 80, 100, 255},
		"spike":           {200, 50, 50, 255},
		"water":           {50, 90, 180, 160},
		"lava":            {230, 90, 20, 255},
		"coin_wall":       {160, 140, 60, 255},
		"narrow_gap":      {50, 50, 65, 255},
		"platform":        {120, 100, 70, 255},
		"coin":            {255, 215, 0, 255},
		"rare_coin":       {180, 120, 255, 255},
		"hp_up":           {255, 100, 150, 255},
		"powerup":         {100, 255, 255, 255},
		"save_point":      {120, 255, 120, 255},
		"moving_platform": {150, 150, 170, 255},
		"thwump":          {170, 60, 60, 255},
		"turret":          {140, 90, 140, 255},
		"laser":           {220, 60, 60, 255},
		"vanish_block":    {110, 110, 140, 255},
		"projectile":      {255, 160, 60, 255},
		"player":          {100, 200, 100, 255},
	}
)

// keyMap binds the physical keys the shell watches to the logical key names
// the simulation's bindings use. Fixed order keeps recorded event streams
// deterministic.
var keyMap = []struct {
	key  ebiten.Key
	name string
}{
	{ebiten.KeyArrowLeft, "ArrowLeft"},
	{ebiten.KeyArrowRight, "ArrowRight"},
	{ebiten.KeyArrowDown, "ArrowDown"},
	{ebiten.KeyZ, "z"},
	{ebiten.KeySpace, " "},
	{ebiten.KeyShiftLeft, "Shift"},
	{ebiten.KeyShiftRight, "Shift"},
}

// Saver persists progress blobs. A nil Saver disables autosaving.
type Saver interface {
	Save(blob string) error
}

// Playing is the main gameplay scene. It owns a live world, feeds it key
// events and frame time, and renders its draw command list.
type Playing struct {
	tuning  *config.Tuning
	world   *engine.World
	state   state.GameState
	screenW int
	screenH int

	saver       Saver
	savedAnchor int

	recorder       *Recorder
	recordFilename string

	tuningCh <-chan config.Tuning
}

// New creates the gameplay scene over an already-loaded world.
// If recordPath is not empty, the input stream is recorded there.
func New(world *engine.World, tuning *config.Tuning, saver Saver, recordPath string) *Playing {
	p := &Playing{
		tuning:         tuning,
		world:          world,
		state:          state.StatePlaying,
		screenW:        tuning.Display.ScreenWidth,
		screenH:        tuning.Display.ScreenHeight,
		saver:          saver,
		savedAnchor:    world.AnchorID(),
		recordFilename: recordPath,
	}
	if recordPath != "" {
		p.recorder = NewRecorder(world.MapName())
		log.Info("recording enabled", "path", recordPath)
	}
	return p
}

// SetTuningUpdates installs a channel of live tuning reloads. Values are
// applied at frame boundaries so a reload never lands mid-step.
func (p *Playing) SetTuningUpdates(ch <-chan config.Tuning) {
	p.tuningCh = ch
}

// Update proceeds the game state (implements scene.Scene)
func (p *Playing) Update(dt float64) (scene.Scene, error) {
	select {
	case t := <-p.tuningCh:
		if err := p.world.SetTuning(t); err != nil {
			log.Warn("tuning reload rejected", "err", err)
		} else {
			log.Info("tuning reloaded")
		}
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if p.state == state.StatePaused {
			p.state = state.StatePlaying
		} else {
			p.state = state.StatePaused
		}
	}
	if p.state == state.StatePaused {
		return nil, nil
	}

	// F5: Save recording manually
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) && p.recorder != nil {
		p.saveRecording()
	}

	events := collectKeyEvents()
	if p.recorder != nil {
		p.recorder.RecordFrame(events, dt)
	}
	for _, ev := range events {
		p.world.ApplyInput(ev)
	}
	p.world.Step(dt)

	// death and respawn both happen inside the world; the scene state only
	// drives the overlay
	if p.world.Snapshot().Dead {
		p.state = state.StateDead
	} else if p.state == state.StateDead {
		p.state = state.StatePlaying
	}

	p.autosave()
	return nil, nil
}

// collectKeyEvents turns this frame's physical key transitions into logical
// key events, in keyMap order.
func collectKeyEvents() []system.KeyEvent {
	var events []system.KeyEvent
	for _, m := range keyMap {
		if inpututil.IsKeyJustPressed(m.key) {
			events = append(events, system.KeyEvent{Kind: system.KeyDown, Key: m.name})
		}
		if inpututil.IsKeyJustReleased(m.key) {
			events = append(events, system.KeyEvent{Kind: system.KeyUp, Key: m.name})
		}
	}
	return events
}

// autosave persists progress whenever a new save point is reached.
func (p *Playing) autosave() {
	if p.saver == nil {
		return
	}
	anchor := p.world.AnchorID()
	if anchor == p.savedAnchor {
		return
	}
	if err := p.saver.Save(p.world.SaveData()); err != nil {
		log.Warn("autosave failed", "err", err)
		return
	}
	p.savedAnchor = anchor
	log.Info("progress saved", "anchor", anchor)
}

// saveRecording saves the current recording to file
func (p *Playing) saveRecording() {
	if p.recorder == nil {
		return
	}

	filename := p.recordFilename
	if filename == "" {
		filename = GenerateFilename()
	}

	if err := p.recorder.Save(filename); err != nil {
		log.Warn("failed to save recording", "err", err)
	} else {
		log.Info("recording saved", "path", filename, "frames", p.recorder.FrameCount())
	}
}

// OnEnter is called when entering this scene
func (p *Playing) OnEnter() {}

// OnExit saves progress and the recording, if any.
func (p *Playing) OnExit() {
	if p.saver != nil {
		if err := p.saver.Save(p.world.SaveData()); err != nil {
			log.Warn("final save failed", "err", err)
		}
	}
	if p.recorder != nil && p.recorder.FrameCount() > 0 {
		p.saveRecording()
	}
}

// camera returns the top-left of the view in pixels, centered on the player
// and clamped to the level bounds.
func (p *Playing) camera() (float64, float64) {
	snap := p.world.Snapshot()
	lvl := p.world.Level()

	camX := snap.PlayerPos.X*entity.TilePixels - float64(p.screenW)/2
	camY := snap.PlayerPos.Y*entity.TilePixels - float64(p.screenH)/2
	camX = clamp(camX, 0, float64(lvl.Width*entity.TilePixels-p.screenW))
	camY = clamp(camY, 0, float64(lvl.Height*entity.TilePixels-p.screenH))
	return camX, camY
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// screenSink renders the world's draw commands as flat rects and lines.
type screenSink struct {
	screen *ebiten.Image
	camX   float64
	camY   float64
}

func (s *screenSink) Emit(c engine.Command) {
	if c.Sprite == "laser_beam" {
		ebitenutil.DrawLine(s.screen,
			c.Pos.X-s.camX, c.Pos.Y-s.camY,
			c.End.X-s.camX, c.End.Y-s.camY,
			spriteColors["laser"])
		return
	}

	col, ok := spriteColors[c.Sprite]
	if !ok {
		col = colorUnknown
	}
	if c.Blink {
		col = colorFlash
	}
	ebitenutil.DrawRect(s.screen, c.Pos.X-s.camX, c.Pos.Y-s.camY, c.Size.X, c.Size.Y, col)
}

// Draw renders the game screen
func (p *Playing) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	camX, camY := p.camera()
	p.world.DrawFrame(&screenSink{screen: screen, camX: camX, camY: camY})

	p.drawHUD(screen)

	switch p.state {
	case state.StatePaused:
		ebitenutil.DebugPrintAt(screen, "PAUSED - Esc to resume", p.screenW/2-70, p.screenH/2)
	case state.StateDead:
		ebitenutil.DebugPrintAt(screen, "YOU DIED - press jump to respawn", p.screenW/2-100, p.screenH/2)
	}
}

func (p *Playing) drawHUD(screen *ebiten.Image) {
	cs := p.world.CharacterState()

	// HP pips
	const pipW, pipH, pipGap = 18, 12, 4
	for i := 0; i < cs.MaxHP; i++ {
		c := colorHealthBG
		if i < cs.HP {
			c = colorHealthFG
		}
		ebitenutil.DrawRect(screen, float64(10+i*(pipW+pipGap)), 10, pipW, pipH, c)
	}

	ebitenutil.DebugPrintAt(screen, p.world.InfoLine(), 10, 28)
	if len(cs.PowerUps) > 0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Abilities: %v", cs.PowerUps), 10, 44)
	}
}
