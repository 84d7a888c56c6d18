package replay

import (
	"github.com/hollowcast/caldera/internal/application/engine"
	"github.com/hollowcast/caldera/internal/application/system"
)

// Replayer walks a recorded session frame by frame.
type Replayer struct {
	session Session
	frame   int
}

// NewReplayer creates a replayer over a session.
func NewReplayer(s Session) *Replayer {
	return &Replayer{session: s}
}

// Next returns the key events and duration of the next frame and advances.
// ok is false past the end of the session.
func (r *Replayer) Next() (events []system.KeyEvent, dt float64, ok bool) {
	if r.frame >= len(r.session.Frames) {
		return nil, 0, false
	}
	f := r.session.Frames[r.frame]
	r.frame++

	for _, e := range f.E {
		kind := system.KeyDown
		if e.T == "u" {
			kind = system.KeyUp
		}
		events = append(events, system.KeyEvent{Kind: kind, Key: e.K})
	}
	return events, f.DT, true
}

// CurrentFrame returns the index of the next frame to play.
func (r *Replayer) CurrentFrame() int { return r.frame }

// TotalFrames returns the number of frames in the session.
func (r *Replayer) TotalFrames() int { return len(r.session.Frames) }

// Reset rewinds the replayer to the first frame.
func (r *Replayer) Reset() { r.frame = 0 }

// Run plays a whole session into a world and returns the final state hash.
// The world should be freshly built from the session's map.
func Run(w *engine.World, s Session) uint64 {
	r := NewReplayer(s)
	for {
		events, dt, ok := r.Next()
		if !ok {
			break
		}
		for _, ev := range events {
			w.ApplyInput(ev)
		}
		w.Step(dt)
	}
	return w.StateHash()
}
