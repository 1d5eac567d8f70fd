package engine

import "SketchBoard/internal/state"

// Command is an explicit instruction from the host. Hosts hand commands to
// Dispatch instead of mutating the engine through ambient events.
type Command interface {
	apply(e *Engine) error
}

type ResizeCommand struct{ Width, Height int }

type ClearCommand struct{}

type UndoCommand struct{}

type SelectToolCommand struct{ Tool state.Tool }

type SettingsCommand struct{ Settings state.Settings }

type CommitTextCommand struct{ Text string }

type CancelTextCommand struct{}

// PointerPhase is the stage of a pointer session a PointerCommand reports.
type PointerPhase int

const (
	PointerDown PointerPhase = iota
	PointerMove
	PointerUp
)

type PointerCommand struct {
	Phase PointerPhase
	At    state.Point
}

func (c ResizeCommand) apply(e *Engine) error     { return e.OnResize(c.Width, c.Height) }
func (ClearCommand) apply(e *Engine) error        { return e.OnClearRequested() }
func (UndoCommand) apply(e *Engine) error         { return e.OnUndoRequested() }
func (c CommitTextCommand) apply(e *Engine) error { return e.CommitText(c.Text) }

func (c SelectToolCommand) apply(e *Engine) error {
	e.SetTool(c.Tool)
	return nil
}

func (c SettingsCommand) apply(e *Engine) error {
	e.SetSettings(c.Settings)
	return nil
}

func (CancelTextCommand) apply(e *Engine) error {
	e.CancelText()
	return nil
}

func (c PointerCommand) apply(e *Engine) error {
	switch c.Phase {
	case PointerDown:
		e.Begin(c.At)
	case PointerMove:
		e.Move(c.At)
	default:
		e.End()
	}
	return nil
}

// Dispatch applies cmd.
func (e *Engine) Dispatch(cmd Command) error {
	if cmd == nil {
		return nil
	}
	return cmd.apply(e)
}
