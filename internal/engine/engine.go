// Package engine turns pointer sessions into raster mutations.
//
// An Engine is driven from a single goroutine (the UI thread). It owns the
// surface and the undo history; a snapshot is pushed exactly once per
// committing action and never for preview redraws.
package engine

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"SketchBoard/internal/history"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/raster"
	"SketchBoard/internal/state"
)

type Phase int

const (
	Idle Phase = iota
	SessionActive
	TextEditing
)

func (p Phase) String() string {
	switch p {
	case SessionActive:
		return "session"
	case TextEditing:
		return "text"
	default:
		return "idle"
	}
}

// CommitKind identifies what a Commit notification describes.
type CommitKind int

const (
	CommitStroke CommitKind = iota
	CommitShape
	CommitText
	CommitClear
	CommitUndo
)

func (k CommitKind) String() string {
	switch k {
	case CommitStroke:
		return "stroke"
	case CommitShape:
		return "shape"
	case CommitText:
		return "text"
	case CommitClear:
		return "clear"
	case CommitUndo:
		return "undo"
	default:
		return "CommitKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Commit is passed to OnCommit after every user-visible mutation.
type Commit struct {
	Kind CommitKind
	Tool state.Tool
}

// Options configure a new Engine.
type Options struct {
	HistoryLimit int
	FontSize     float64
	StalePolicy  raster.StalePolicy
	Tool         state.Tool
	Settings     state.Settings
}

// session is the transient pointer session between Begin and End.
type session struct {
	tool   state.Tool
	mode   state.Composite
	anchor state.Point
	last   state.Point
	moved  bool
	before *raster.Snapshot
}

// textEdit is pending text-overlay input.
type textEdit struct {
	anchor state.Point
	text   string
}

type Engine struct {
	surface  *raster.Surface
	history  *history.Stack[*raster.Snapshot]
	tool     state.Tool
	settings state.Settings

	sess *session
	text *textEdit

	// OnCommit, if set, is called after each committing action. It is not
	// called for preview redraws.
	OnCommit func(Commit)
}

func New(opts Options) *Engine {
	var ropts []raster.Option
	if opts.FontSize > 0 {
		ropts = append(ropts, raster.WithFontSize(opts.FontSize))
	}
	ropts = append(ropts, raster.WithStalePolicy(opts.StalePolicy))

	settings := opts.Settings
	if settings == (state.Settings{}) {
		settings = state.DefaultSettings()
	}
	return &Engine{
		surface:  raster.NewSurface(ropts...),
		history:  history.New[*raster.Snapshot](opts.HistoryLimit),
		tool:     opts.Tool,
		settings: settings.Normalize(),
	}
}

func (e *Engine) Tool() state.Tool         { return e.tool }
func (e *Engine) Settings() state.Settings { return e.settings }
func (e *Engine) HistoryLen() int          { return e.history.Len() }
func (e *Engine) Size() (w, h int)         { return e.surface.Size() }

// Phase reports the state machine's current state.
func (e *Engine) Phase() Phase {
	switch {
	case e.sess != nil:
		return SessionActive
	case e.text != nil:
		return TextEditing
	default:
		return Idle
	}
}

// TextAnchor returns where the pending text will be placed.
func (e *Engine) TextAnchor() (state.Point, bool) {
	if e.text == nil {
		return state.Point{}, false
	}
	return e.text.anchor, true
}

// TextBounds reports the area text would cover at the pending anchor.
func (e *Engine) TextBounds(text string) (image.Rectangle, error) {
	anchor, _ := e.TextAnchor()
	return e.surface.TextBounds(text, anchor)
}

// Capture returns a flat copy of the committed buffer without disturbing
// any open session.
func (e *Engine) Capture() *image.RGBA {
	return e.surface.Image()
}

// SetSettings replaces the settings used by subsequent mutations.
func (e *Engine) SetSettings(s state.Settings) {
	e.settings = s.Normalize()
}

// SetTool finalizes any open pointer session and pending text, then switches
// tools.
func (e *Engine) SetTool(t state.Tool) {
	if t == e.tool {
		return
	}
	e.End()
	e.finalizeText()
	logging.Logger().Debug("engine: tool changed", "from", e.tool, "to", t)
	e.tool = t
}

// Begin opens a pointer session at p (pointer-down).
func (e *Engine) Begin(p state.Point) {
	e.End()

	if e.tool == state.ToolText {
		e.finalizeText()
		e.text = &textEdit{anchor: p}
		return
	}
	e.finalizeText()

	before, err := e.surface.Snapshot()
	if err != nil {
		logging.Logger().Debug("engine: begin skipped", "tool", e.tool, "err", err)
		return
	}
	e.history.Push(before)
	e.sess = &session{
		tool:   e.tool,
		mode:   e.tool.Composite(),
		anchor: p,
		last:   p,
		before: before,
	}
}

// Move extends the open session to p. Freehand tools paint the segment from
// the previous point; shape tools restore the pre-session pixels and draw a
// fresh preview.
func (e *Engine) Move(p state.Point) {
	s := e.sess
	if s == nil {
		return
	}
	if s.tool.IsFreehand() {
		if err := e.surface.CommitStroke([]state.Point{s.last, p}, e.settings, s.mode); err != nil {
			logging.Logger().Debug("engine: segment dropped", "err", err)
		}
		s.last = p
		s.moved = true
		return
	}

	if err := e.surface.Restore(s.before); err != nil {
		logging.Logger().Debug("engine: preview skipped", "err", err)
		return
	}
	if err := e.surface.Preview(s.tool, s.anchor, p, e.settings); err != nil {
		logging.Logger().Debug("engine: preview failed", "tool", s.tool, "err", err)
	}
	s.last = p
	s.moved = true
}

// End closes the open session (pointer-up or pointer-leave). For shapes the
// last preview frame is the committed result.
func (e *Engine) End() {
	s := e.sess
	if s == nil {
		return
	}
	e.sess = nil

	kind := CommitShape
	if s.tool.IsFreehand() {
		kind = CommitStroke
		if !s.moved {
			if err := e.surface.CommitStroke([]state.Point{s.anchor}, e.settings, s.mode); err != nil {
				logging.Logger().Debug("engine: dot dropped", "err", err)
			}
		}
	}
	e.notify(Commit{Kind: kind, Tool: s.tool})
}

// EditText records the overlay's current contents so a later tool switch
// can commit them.
func (e *Engine) EditText(text string) {
	if e.text != nil {
		e.text.text = text
	}
}

// CommitText paints text at the pending anchor and leaves TextEditing.
// Whitespace-only text is discarded without touching history.
func (e *Engine) CommitText(text string) error {
	if e.text == nil {
		return nil
	}
	e.text.text = text
	return e.finalizeText()
}

// CancelText discards the pending text edit.
func (e *Engine) CancelText() {
	e.text = nil
}

func (e *Engine) finalizeText() error {
	t := e.text
	if t == nil {
		return nil
	}
	e.text = nil
	if strings.TrimSpace(t.text) == "" {
		return nil
	}

	before, err := e.surface.Snapshot()
	if err != nil {
		logging.Logger().Debug("engine: text skipped", "err", err)
		return nil
	}
	if err := e.surface.CommitText(t.text, t.anchor, e.settings); err != nil {
		return fmt.Errorf("commit text: %w", err)
	}
	e.history.Push(before)
	e.notify(Commit{Kind: CommitText, Tool: state.ToolText})
	return nil
}

// OnResize resizes the surface, keeping committed pixels at the origin. A
// shape session open across the resize keeps previewing against the
// resized pre-session pixels.
func (e *Engine) OnResize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("resize to %dx%d: %w", w, h, raster.ErrInvalidSurface)
	}
	s := e.sess
	if s != nil && s.tool.IsShape() && s.moved {
		if err := e.surface.Restore(s.before); err != nil {
			logging.Logger().Debug("engine: resize restore failed", "err", err)
		}
	}
	if err := e.surface.Resize(w, h); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", w, h, err)
	}
	if s != nil && s.tool.IsShape() {
		if before, err := e.surface.Snapshot(); err == nil {
			s.before = before
		}
		if s.moved {
			e.Move(s.last)
		}
	}
	logging.Logger().Debug("engine: resized", "width", w, "height", h)
	return nil
}

// OnClearRequested wipes the surface after saving an undo step.
func (e *Engine) OnClearRequested() error {
	e.End()
	before, err := e.surface.Snapshot()
	if err != nil {
		logging.Logger().Debug("engine: clear skipped", "err", err)
		return nil
	}
	e.history.Push(before)
	if err := e.surface.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	e.notify(Commit{Kind: CommitClear, Tool: e.tool})
	return nil
}

// OnUndoRequested restores the snapshot taken before the most recent
// committing action. An empty history is a silent no-op. A snapshot taken
// at a different surface size is dropped and reported as
// raster.ErrStaleSnapshot unless the surface rescales stale snapshots.
func (e *Engine) OnUndoRequested() error {
	e.End()
	sn, err := e.history.Pop()
	if errors.Is(err, history.ErrEmptyHistory) {
		logging.Logger().Debug("engine: nothing to undo")
		return nil
	}
	if err := e.surface.Restore(sn); err != nil {
		if errors.Is(err, raster.ErrInvalidSurface) {
			e.history.Push(sn)
			return nil
		}
		return fmt.Errorf("undo: %w", err)
	}
	e.notify(Commit{Kind: CommitUndo, Tool: e.tool})
	return nil
}

func (e *Engine) notify(c Commit) {
	logging.Logger().Debug("engine: commit", "kind", c.Kind, "tool", c.Tool, "history", e.history.Len())
	if e.OnCommit != nil {
		e.OnCommit(c)
	}
}
