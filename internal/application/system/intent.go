package system

// Intent is what the player wants during one simulation step: held movement
// plus the action edges that fired since the previous step.
type Intent struct {
	MoveX       float64 // -1 left, +1 right, 0 neutral
	Down        bool
	Jump        bool // held, drives variable jump height
	JumpPressed bool
	DashPressed bool
}

// ClearEdges drops the one-shot action flags, keeping held state. The world
// calls this after the first substep of a step so an edge fires exactly once.
func (i *Intent) ClearEdges() {
	i.JumpPressed = false
	i.DashPressed = false
}

// MergeEdges folds pending edges from an earlier, zero-substep step into this
// intent so a press is never lost when a step is too short to simulate.
func (i *Intent) MergeEdges(prev Intent) {
	i.JumpPressed = i.JumpPressed || prev.JumpPressed
	i.DashPressed = i.DashPressed || prev.DashPressed
}
