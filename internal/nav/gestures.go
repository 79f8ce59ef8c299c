package nav

import "time"

const (
	DefaultSwipeThreshold = 50
	DefaultLongPress      = 3 * time.Second
	DefaultDebounce       = 150 * time.Millisecond
)

// Action is what an input gesture resolved to.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionSetup
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPrev:
		return "prev"
	case ActionSetup:
		return "setup"
	}
	return "none"
}

// Button is a discrete navigation input.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Gestures turns raw pointer and button input into navigation actions.
// A pointer contact is either a swipe or a long-press, never both: once the
// long-press fires, the release is not evaluated as a swipe.
type Gestures struct {
	Threshold int
	LongPress time.Duration
	Debounce  time.Duration

	down       bool
	startX     int
	lastX      int
	pressedAt  time.Time
	longFired  bool
	lastButton time.Time
}

// NewGestures applies defaults for non-positive settings.
func NewGestures(threshold int, longPress, debounce time.Duration) *Gestures {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	return &Gestures{Threshold: threshold, LongPress: longPress, Debounce: debounce}
}

// Press starts a contact at column x.
func (g *Gestures) Press(x int, now time.Time) {
	g.down = true
	g.startX = x
	g.lastX = x
	g.pressedAt = now
	g.longFired = false
}

// Move tracks the contact position. It is ignored with no contact.
func (g *Gestures) Move(x int) {
	if g.down {
		g.lastX = x
	}
}

// Hold is polled while the loop runs and fires ActionSetup once per contact
// when it has been held for LongPress.
func (g *Gestures) Hold(now time.Time) Action {
	if !g.down || g.longFired {
		return ActionNone
	}
	if now.Sub(g.pressedAt) >= g.LongPress {
		g.longFired = true
		return ActionSetup
	}
	return ActionNone
}

// Release ends the contact. Travel from the press to the last tracked
// position beyond the threshold is a swipe: rightward goes to the previous
// mode, leftward to the next.
func (g *Gestures) Release(now time.Time) Action {
	if !g.down {
		return ActionNone
	}
	g.down = false
	if g.longFired {
		return ActionNone
	}
	if now.Sub(g.pressedAt) >= g.LongPress {
		g.longFired = true
		return ActionSetup
	}
	dx := g.lastX - g.startX
	switch {
	case dx > g.Threshold:
		return ActionPrev
	case dx < -g.Threshold:
		return ActionNext
	}
	return ActionNone
}

// Pressed reports whether a contact is in progress.
func (g *Gestures) Pressed() bool { return g.down }

// Button handles a button edge. Edges closer together than Debounce are
// contact bounce or key repeat and are dropped.
func (g *Gestures) Button(b Button, now time.Time) Action {
	if !g.lastButton.IsZero() && now.Sub(g.lastButton) < g.Debounce {
		return ActionNone
	}
	g.lastButton = now
	if b == ButtonLeft {
		return ActionPrev
	}
	return ActionNext
}
