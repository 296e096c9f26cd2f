package paginate

type ActionKind int

const (
	ActionNoop ActionKind = iota
	ActionFirst
	ActionPrevious
	ActionStop
	ActionNext
	ActionLast
	ActionJump
)

// Action is one navigation event. Index is only read for ActionJump.
type Action struct {
	Kind  ActionKind
	Index int
}

func (k ActionKind) String() string {
	switch k {
	case ActionNoop:
		return "noop"
	case ActionFirst:
		return "first"
	case ActionPrevious:
		return "previous"
	case ActionStop:
		return "stop"
	case ActionNext:
		return "next"
	case ActionLast:
		return "last"
	case ActionJump:
		return "jump"
	default:
		return "unknown"
	}
}

// ActionFor returns the action a control triggers.
func ActionFor(control Control) Action {
	switch control {
	case ControlFirst:
		return Action{Kind: ActionFirst}
	case ControlPrevious:
		return Action{Kind: ActionPrevious}
	case ControlStop:
		return Action{Kind: ActionStop}
	case ControlNext:
		return Action{Kind: ActionNext}
	case ControlLast:
		return Action{Kind: ActionLast}
	default:
		return Action{Kind: ActionNoop}
	}
}

func (k ActionKind) control() (Control, bool) {
	switch k {
	case ActionFirst:
		return ControlFirst, true
	case ActionPrevious:
		return ControlPrevious, true
	case ActionStop:
		return ControlStop, true
	case ActionNext:
		return ControlNext, true
	case ActionLast:
		return ControlLast, true
	case ActionJump:
		return ControlJump, true
	default:
		return 0, false
	}
}
