package system

// Action names recognized by the input bindings.
const (
	ActionLeft  = "left"
	ActionRight = "right"
	ActionDown  = "down"
	ActionJump  = "jump"
	ActionDash  = "dash"
)

// KeyEventKind distinguishes press and release transitions.
type KeyEventKind int

const (
	KeyDown KeyEventKind = iota
	KeyUp
)

// KeyEvent is a discrete key transition reported by the host. Keys are
// logical names ("ArrowLeft", "z", "Shift") so the simulation never depends
// on a windowing backend.
type KeyEvent struct {
	Kind KeyEventKind
	Key  string
}

// Translator turns key transitions into per-step intents. Multiple keys may
// bind to one action; the action stays held until every bound key is up, and
// a press edge fires only on the transition from zero held keys to one.
// Duplicate KeyDown events for an already-held key are ignored, as are keys
// with no binding.
type Translator struct {
	actionByKey map[string]string
	held        map[string]map[string]struct{}
	pressed     map[string]bool
}

// NewTranslator builds a translator from action -> key-list bindings.
func NewTranslator(bindings map[string][]string) *Translator {
	t := &Translator{
		actionByKey: make(map[string]string),
		held:        make(map[string]map[string]struct{}),
		pressed:     make(map[string]bool),
	}
	for action, keys := range bindings {
		for _, key := range keys {
			t.actionByKey[key] = action
		}
	}
	return t
}

// Apply feeds one key transition into the translator.
func (t *Translator) Apply(ev KeyEvent) {
	action, ok := t.actionByKey[ev.Key]
	if !ok {
		return
	}
	switch ev.Kind {
	case KeyDown:
		keys := t.held[action]
		if keys == nil {
			keys = make(map[string]struct{})
			t.held[action] = keys
		}
		if _, already := keys[ev.Key]; already {
			return
		}
		if len(keys) == 0 {
			t.pressed[action] = true
		}
		keys[ev.Key] = struct{}{}
	case KeyUp:
		keys := t.held[action]
		if keys == nil {
			return
		}
		delete(keys, ev.Key)
	}
}

// Held reports whether any key bound to the action is currently down.
func (t *Translator) Held(action string) bool {
	return len(t.held[action]) > 0
}

// ConsumeIntent derives the intent for the next step and clears pending
// edges, so each press is delivered exactly once.
func (t *Translator) ConsumeIntent() Intent {
	intent := Intent{
		Down:        t.Held(ActionDown),
		Jump:        t.Held(ActionJump),
		JumpPressed: t.pressed[ActionJump],
		DashPressed: t.pressed[ActionDash],
	}
	if t.Held(ActionLeft) {
		intent.MoveX -= 1
	}
	if t.Held(ActionRight) {
		intent.MoveX += 1
	}
	t.pressed = make(map[string]bool)
	return intent
}

// Reset releases every key and drops pending edges.
func (t *Translator) Reset() {
	t.held = make(map[string]map[string]struct{})
	t.pressed = make(map[string]bool)
}
