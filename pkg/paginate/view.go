package paginate

import "strconv"

// Page is pre-rendered content. The session never looks inside it.
type Page struct {
	Text string
}

type ControlView struct {
	Control  Control
	Style    ControlStyle
	Disabled bool
}

type JumpOption struct {
	Index    int
	Label    string
	Current  bool
	Disabled bool
}

// View is a snapshot of everything one render needs.
type View struct {
	Token    string
	Page     Page
	Index    int
	Total    int
	Controls []ControlView
	Jump     []JumpOption
	Embedded bool
	Final    bool
}

func jumpLabel(index int) string {
	return "Page " + strconv.Itoa(index+1)
}
