// Package paginate runs owner-only paged messages with navigation
// controls and a fixed deadline.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

const DefaultTimeout = 60 * time.Second

var (
	ErrMissingPages     = errors.New("paginator needs at least one page")
	ErrConflictingModes = errors.New("deferred and edit response modes are mutually exclusive")
	ErrMissingMessage   = errors.New("edit response mode needs a message id")
)

// ResponseMode selects how the first render reaches the chat.
type ResponseMode int

const (
	ModeSend ResponseMode = iota
	ModeFollowup
	ModeEdit
)

func (m ResponseMode) String() string {
	switch m {
	case ModeFollowup:
		return "followup"
	case ModeEdit:
		return "edit"
	default:
		return "send"
	}
}

// Delivery tells a Renderer where the first render goes.
type Delivery struct {
	Mode      ResponseMode
	OwnerID   int64
	Hidden    bool // only honoured for ModeSend
	MessageID int  // message to reply to (followup) or replace (edit)
}

// Renderer draws views. Each call replaces the whole message in one edit.
type Renderer interface {
	Open(ctx context.Context, view View, delivery Delivery) error
	Update(ctx context.Context, view View) error
}

type Options struct {
	OwnerID         int64
	Controls        ControlSet // nil means DefaultControls
	Timeout         time.Duration
	Embedded        bool
	QuickNavigation bool
	Hidden          bool
	Deferred        bool
	Edit            bool
	MessageID       int
}

// Paginator is a validated, not yet started session.
type Paginator struct {
	pages []Page
	opts  Options
}

// New validates the launch options. Nothing is sent until Run.
func New(pages []Page, opts Options) (*Paginator, error) {
	if len(pages) == 0 {
		return nil, ErrMissingPages
	}
	if opts.Deferred && opts.Edit {
		return nil, ErrConflictingModes
	}
	if opts.Edit && opts.MessageID == 0 {
		return nil, ErrMissingMessage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Controls == nil {
		opts.Controls = DefaultControls()
	} else {
		opts.Controls = opts.Controls.clone()
	}
	return &Paginator{pages: append([]Page(nil), pages...), opts: opts}, nil
}

func (p *Paginator) delivery() Delivery {
	d := Delivery{Mode: ModeSend, OwnerID: p.opts.OwnerID, MessageID: p.opts.MessageID}
	switch {
	case p.opts.Edit:
		d.Mode = ModeEdit
	case p.opts.Deferred:
		d.Mode = ModeFollowup
	default:
		d.Hidden = p.opts.Hidden
	}
	return d
}

// Run performs the first render and blocks until the session stops, its
// deadline passes or ctx is cancelled. On deadline or cancellation the
// controls are disabled with a detached context.
func (p *Paginator) Run(ctx context.Context, renderer Renderer, registry *Registry) error {
	session := newSession(newToken(), p.pages, p.opts, renderer)

	if err := renderer.Open(ctx, session.View(), p.delivery()); err != nil {
		return fmt.Errorf("open pager: %w", err)
	}
	if registry != nil {
		registry.add(session)
		defer registry.remove(session.token)
	}
	logger.Debug("pager started", "token", session.token, "owner_id", p.opts.OwnerID, "pages", len(p.pages))

	timer := time.NewTimer(p.opts.Timeout)
	defer timer.Stop()

	select {
	case <-session.Done():
		return nil
	case <-timer.C:
		session.Expire(context.WithoutCancel(ctx))
		return nil
	case <-ctx.Done():
		session.Expire(context.WithoutCancel(ctx))
		return ctx.Err()
	}
}

// Start validates and runs a pager in one call.
func Start(ctx context.Context, renderer Renderer, registry *Registry, pages []Page, opts Options) error {
	p, err := New(pages, opts)
	if err != nil {
		return err
	}
	return p.Run(ctx, renderer, registry)
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
