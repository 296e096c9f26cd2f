package paginate

import (
	"context"
	"sync"

	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

// Session is the state machine behind one paged message. All transitions
// and the render they trigger run under the session lock, so renders for
// a session never interleave.
type Session struct {
	mu         sync.Mutex
	token      string
	pages      []Page
	index      int
	ownerID    int64
	controls   ControlSet
	jump       bool
	embedded   bool
	terminated bool
	done       chan struct{}
	renderer   Renderer
}

func newSession(token string, pages []Page, opts Options, renderer Renderer) *Session {
	return &Session{
		token:    token,
		pages:    pages,
		ownerID:  opts.OwnerID,
		controls: opts.Controls,
		jump:     opts.QuickNavigation && len(pages) > 1,
		embedded: opts.Embedded,
		done:     make(chan struct{}),
		renderer: renderer,
	}
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) OwnerID() int64 {
	return s.ownerID
}

// Handle applies action on behalf of actorID. It reports false when the
// action was refused: the session is over, the actor is not the owner,
// or the action targets a control the session does not show. A refused
// action never renders.
func (s *Session) Handle(ctx context.Context, actorID int64, action Action) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated || actorID != s.ownerID {
		return false, nil
	}
	if action.Kind == ActionNoop {
		return true, nil
	}
	if !s.allowsLocked(action.Kind) {
		return false, nil
	}

	if action.Kind == ActionStop {
		s.terminateLocked()
		return true, s.renderer.Update(ctx, s.viewLocked())
	}

	next := s.index
	last := len(s.pages) - 1
	switch action.Kind {
	case ActionFirst:
		next = 0
	case ActionPrevious:
		next = s.index - 1
	case ActionNext:
		next = s.index + 1
	case ActionLast:
		next = last
	case ActionJump:
		next = action.Index
	}
	next = max(0, min(next, last))

	if next == s.index {
		return true, nil
	}
	s.index = next
	return true, s.renderer.Update(ctx, s.viewLocked())
}

// Expire ends the session after its deadline. The disabling render is
// best effort: the message may already be gone.
func (s *Session) Expire(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return
	}
	s.terminateLocked()
	if err := s.renderer.Update(ctx, s.viewLocked()); err != nil {
		logger.Debug("failed to disable expired pager", "token", s.token, "error", err)
	}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// Done is closed once the session terminates.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) allowsLocked(kind ActionKind) bool {
	control, ok := kind.control()
	if !ok {
		return false
	}
	if control == ControlJump {
		return s.jump
	}
	_, present := s.controls[control]
	return present
}

func (s *Session) terminateLocked() {
	s.terminated = true
	close(s.done)
}

func (s *Session) viewLocked() View {
	last := len(s.pages) - 1
	view := View{
		Token:    s.token,
		Page:     s.pages[s.index],
		Index:    s.index,
		Total:    len(s.pages),
		Embedded: s.embedded,
		Final:    s.terminated,
	}

	for _, control := range navigationOrder {
		style, ok := s.controls[control]
		if !ok {
			continue
		}
		disabled := s.terminated
		switch control {
		case ControlFirst, ControlPrevious:
			disabled = disabled || s.index == 0
		case ControlNext, ControlLast:
			disabled = disabled || s.index == last
		}
		view.Controls = append(view.Controls, ControlView{Control: control, Style: style, Disabled: disabled})
	}

	if s.jump {
		view.Jump = make([]JumpOption, len(s.pages))
		for i := range s.pages {
			view.Jump[i] = JumpOption{
				Index:    i,
				Label:    jumpLabel(i),
				Current:  i == s.index,
				Disabled: s.terminated,
			}
		}
	}
	return view
}
