package paginate

// Control identifies one element of the pager control surface.
type Control int

const (
	ControlFirst Control = iota
	ControlPrevious
	ControlStop
	ControlNext
	ControlLast
	ControlJump
)

// navigationOrder is the left to right display order of the button row.
var navigationOrder = []Control{ControlFirst, ControlPrevious, ControlStop, ControlNext, ControlLast}

func (c Control) String() string {
	switch c {
	case ControlFirst:
		return "first"
	case ControlPrevious:
		return "previous"
	case ControlStop:
		return "stop"
	case ControlNext:
		return "next"
	case ControlLast:
		return "last"
	case ControlJump:
		return "jump"
	default:
		return "unknown"
	}
}

type ControlStyle struct {
	Label string
	Emoji string
}

// Text is what a button shows: the emoji, the label, or both.
func (s ControlStyle) Text() string {
	switch {
	case s.Emoji != "" && s.Label != "":
		return s.Emoji + " " + s.Label
	case s.Emoji != "":
		return s.Emoji
	default:
		return s.Label
	}
}

// ControlSet holds the navigation controls a session shows. Controls
// missing from the set are not rendered and their actions are refused.
type ControlSet map[Control]ControlStyle

func DefaultControls() ControlSet {
	return ControlSet{
		ControlFirst:    {Emoji: "⏮️"},
		ControlPrevious: {Emoji: "◀"},
		ControlStop:     {Emoji: "⏹️"},
		ControlNext:     {Emoji: "▶"},
		ControlLast:     {Emoji: "⏭️"},
	}
}

// LegacyControlSet maps a positional list of styles onto controls:
//
//	5 styles: first, previous, stop, next, last
//	4 styles: first, previous, next, last
//	3 styles: previous, stop, next
//
// Any other length returns nil, meaning the defaults apply.
func LegacyControlSet(styles []ControlStyle) ControlSet {
	var order []Control
	switch len(styles) {
	case 5:
		order = navigationOrder
	case 4:
		order = []Control{ControlFirst, ControlPrevious, ControlNext, ControlLast}
	case 3:
		order = []Control{ControlPrevious, ControlStop, ControlNext}
	default:
		return nil
	}
	set := make(ControlSet, len(order))
	for i, control := range order {
		set[control] = styles[i]
	}
	return set
}

func (s ControlSet) clone() ControlSet {
	out := make(ControlSet, len(s))
	for control, style := range s {
		if control == ControlJump {
			continue
		}
		out[control] = style
	}
	return out
}
