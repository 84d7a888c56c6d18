package playing

import (
	"fmt"
	"time"

	"github.com/hollowcast/caldera/internal/application/replay"
	"github.com/hollowcast/caldera/internal/application/system"
)

// Recorder captures the per-frame input stream for later playback
type Recorder struct {
	session   replay.Session
	recording bool
}

// NewRecorder starts a recording for the named map
func NewRecorder(mapName string) *Recorder {
	s := replay.NewSession(mapName)
	s.Frames = make([]replay.Frame, 0, 3600) // Pre-allocate for ~1 minute at 60fps
	return &Recorder{
		session:   s,
		recording: true,
	}
}

// RecordFrame records one frame: its duration and the key transitions that
// arrived before it
func (r *Recorder) RecordFrame(events []system.KeyEvent, dt float64) {
	if !r.recording {
		return
	}

	f := replay.Frame{F: len(r.session.Frames), DT: dt}
	for _, ev := range events {
		t := "d"
		if ev.Kind == system.KeyUp {
			t = "u"
		}
		f.E = append(f.E, replay.Event{T: t, K: ev.Key})
	}
	r.session.Frames = append(r.session.Frames, f)
}

// Save writes the recorded session to a file
func (r *Recorder) Save(filename string) error {
	if len(r.session.Frames) == 0 {
		return fmt.Errorf("no frames to save")
	}
	return replay.Save(filename, r.session)
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.recording = false
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// FrameCount returns the number of recorded frames
func (r *Recorder) FrameCount() int {
	return len(r.session.Frames)
}

// Session returns the recorded session (for testing)
func (r *Recorder) Session() replay.Session {
	return r.session
}

// GenerateFilename creates a filename based on current time
func GenerateFilename() string {
	return fmt.Sprintf("replay_%s.json", time.Now().Format("20060102_150405"))
}
