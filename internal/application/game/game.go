// Package game runs the ebiten loop and routes each tick to the active
// scene.
package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hollowcast/caldera/internal/application/scene"
)

// Game owns the active scene and advances it once per tick with a fixed
// frame time. Implements ebiten.Game. A scene requests a transition by
// returning its successor from Update; the swap happens between ticks so a
// scene never runs half-entered.
type Game struct {
	active scene.Scene
	width  int
	height int
	tick   float64
}

// New builds the loop around the starting scene and enters it. tick is the
// frame time handed to every Update, in seconds.
func New(start scene.Scene, width, height int, tick float64) *Game {
	g := &Game{
		active: start,
		width:  width,
		height: height,
		tick:   tick,
	}
	g.active.OnEnter()
	return g
}

// Update advances the active scene one tick and performs any transition it
// requested. An error from the scene stops the loop.
func (g *Game) Update() error {
	next, err := g.active.Update(g.tick)
	if err != nil {
		return err
	}
	if next != nil {
		g.active.OnExit()
		g.active = next
		g.active.OnEnter()
	}
	return nil
}

// Draw hands the frame to the active scene.
func (g *Game) Draw(screen *ebiten.Image) {
	g.active.Draw(screen)
}

// Layout reports the fixed logical resolution regardless of window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
