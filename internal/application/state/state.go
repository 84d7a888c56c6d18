package state

// GameState represents the current state of the play session
type GameState int

const (
	StatePlaying GameState = iota
	StatePaused
	StateDead
)

// String returns the string representation of the game state
func (s GameState) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateDead:
		return "Dead"
	default:
		return "Unknown"
	}
}
