// Package scene defines the screen contract the game loop drives.
package scene

import "github.com/hajimehoshi/ebiten/v2"

// Scene is one screen of the game (playing, future menus). The loop calls
// Update once per tick and Draw once per frame on whichever scene is
// active.
type Scene interface {
	// Update advances the scene by dt seconds. Returning a non-nil scene
	// asks the loop to switch to it; returning an error ends the game.
	Update(dt float64) (next Scene, err error)

	// Draw renders the scene onto the frame.
	Draw(screen *ebiten.Image)

	// OnEnter runs when the loop switches to this scene.
	OnEnter()

	// OnExit runs when the loop switches away. Flush saves and close
	// resources here.
	OnExit()
}
