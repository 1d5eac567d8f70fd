package engine

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"SketchBoard/internal/raster"
	"SketchBoard/internal/state"
)

var whitePen = state.Settings{Color: "#FFFFFF", Width: 4, Opacity: 1}

func newEngine(t *testing.T, w, h int, opts Options) (*Engine, *[]Commit) {
	t.Helper()
	if opts.Settings == (state.Settings{}) {
		opts.Settings = whitePen
	}
	e := New(opts)
	if err := e.OnResize(w, h); err != nil {
		t.Fatalf("OnResize() error = %v", err)
	}
	var commits []Commit
	e.OnCommit = func(c Commit) { commits = append(commits, c) }
	return e, &commits
}

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func drag(e *Engine, pts ...state.Point) {
	e.Begin(pts[0])
	for _, p := range pts[1:] {
		e.Move(p)
	}
	e.End()
}

func TestPenStrokeScenario(t *testing.T) {
	e, commits := newEngine(t, 100, 100, Options{})
	drag(e, pt(10, 10), pt(50, 50))

	img := e.Capture()
	if c := img.RGBAAt(30, 30); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel on stroke = %v, want opaque white", c)
	}
	if img.RGBAAt(80, 20).A != 0 {
		t.Error("pixel off stroke painted")
	}
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
	if len(*commits) != 1 || (*commits)[0].Kind != CommitStroke {
		t.Errorf("commits = %v, want one stroke", *commits)
	}
	if e.Phase() != Idle {
		t.Errorf("Phase() = %v after End", e.Phase())
	}
}

func TestRectDragLeavesOnlyFinalFrame(t *testing.T) {
	e, commits := newEngine(t, 160, 100, Options{Tool: state.ToolRect})
	drag(e, pt(0, 0), pt(30, 80), pt(150, 20), pt(60, 60), pt(100, 50))

	ref := raster.NewSurface()
	if err := ref.Resize(160, 100); err != nil {
		t.Fatal(err)
	}
	if err := ref.CommitShapeOutline(state.ToolRect, pt(0, 0), pt(100, 50), whitePen); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e.Capture().Pix, ref.Image().Pix) {
		t.Error("buffer differs from a single rectangle outline; preview frames leaked")
	}
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1 for one drag", e.HistoryLen())
	}
	if len(*commits) != 1 || (*commits)[0].Kind != CommitShape {
		t.Errorf("commits = %v, want one shape", *commits)
	}
}

func TestPreviewIdempotent(t *testing.T) {
	e, _ := newEngine(t, 100, 100, Options{Tool: state.ToolCircle})
	e.Begin(pt(50, 50))
	e.Move(pt(70, 60))
	first := e.Capture()
	e.Move(pt(70, 60))
	second := e.Capture()
	e.End()

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("identical moves produced different buffers")
	}
	if e.HistoryLen() != 1 {
		t.Errorf("previews pushed history: HistoryLen() = %d", e.HistoryLen())
	}
}

func TestClearHistoryBound(t *testing.T) {
	e, _ := newEngine(t, 20, 20, Options{})
	ids := make([]string, 26)
	for i := 1; i <= 25; i++ {
		if err := e.OnClearRequested(); err != nil {
			t.Fatal(err)
		}
		sn, err := e.history.Pop()
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = sn.ID
		e.history.Push(sn)
	}
	if e.HistoryLen() != 20 {
		t.Fatalf("HistoryLen() = %d, want 20", e.HistoryLen())
	}
	for want := 25; want >= 6; want-- {
		sn, err := e.history.Pop()
		if err != nil {
			t.Fatal(err)
		}
		if sn.ID != ids[want] {
			t.Fatalf("pop yielded snapshot of clear %q, want clear #%d", sn.ID, want)
		}
	}
}

func TestTextScenario(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantHistory int
		wantCommits int
	}{
		{"letter", "A", 1, 1},
		{"empty", "", 0, 0},
		{"whitespace", "  \t", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, commits := newEngine(t, 100, 100, Options{Tool: state.ToolText})
			e.Begin(pt(20, 20))
			if e.Phase() != TextEditing {
				t.Fatalf("Phase() = %v, want text", e.Phase())
			}
			if e.HistoryLen() != 0 {
				t.Fatal("entering text edit touched history")
			}
			if a, ok := e.TextAnchor(); !ok || a != pt(20, 20) {
				t.Fatalf("TextAnchor() = %v, %v", a, ok)
			}
			if err := e.CommitText(tt.text); err != nil {
				t.Fatal(err)
			}
			if e.HistoryLen() != tt.wantHistory {
				t.Errorf("HistoryLen() = %d, want %d", e.HistoryLen(), tt.wantHistory)
			}
			if len(*commits) != tt.wantCommits {
				t.Errorf("commits = %d, want %d", len(*commits), tt.wantCommits)
			}
			painted := false
			pix := e.Capture().Pix
			for i := 3; i < len(pix); i += 4 {
				if pix[i] != 0 {
					painted = true
					break
				}
			}
			if painted != (tt.wantHistory == 1) {
				t.Errorf("painted = %v", painted)
			}
			if e.Phase() != Idle {
				t.Errorf("Phase() = %v after commit", e.Phase())
			}
		})
	}
}

func TestUndoRestoresPreviousBuffer(t *testing.T) {
	e, commits := newEngine(t, 80, 80, Options{})
	drag(e, pt(5, 5), pt(70, 5))
	want := e.Capture()

	e.SetTool(state.ToolEllipse)
	drag(e, pt(40, 40), pt(60, 70))
	if bytes.Equal(e.Capture().Pix, want.Pix) {
		t.Fatal("ellipse did not change the buffer")
	}
	if err := e.OnUndoRequested(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e.Capture().Pix, want.Pix) {
		t.Error("undo did not restore the buffer byte for byte")
	}
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
	if last := (*commits)[len(*commits)-1]; last.Kind != CommitUndo {
		t.Errorf("last commit = %v, want undo", last.Kind)
	}
}

func TestUndoEmptyHistoryIsNoop(t *testing.T) {
	e, commits := newEngine(t, 10, 10, Options{})
	if err := e.OnUndoRequested(); err != nil {
		t.Fatalf("OnUndoRequested() error = %v", err)
	}
	if len(*commits) != 0 {
		t.Error("empty undo notified a commit")
	}
}

func TestUndoAfterResize(t *testing.T) {
	tests := []struct {
		name    string
		policy  raster.StalePolicy
		wantErr error
	}{
		{"reject", raster.StaleReject, raster.ErrStaleSnapshot},
		{"rescale", raster.StaleRescale, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t, 50, 50, Options{StalePolicy: tt.policy})
			drag(e, pt(5, 5), pt(45, 45))
			if err := e.OnResize(100, 60); err != nil {
				t.Fatal(err)
			}
			err := e.OnUndoRequested()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("OnUndoRequested() error = %v, want %v", err, tt.wantErr)
			}
			if e.HistoryLen() != 0 {
				t.Errorf("stale snapshot still in history")
			}
		})
	}
}

func TestResizePreservesDrawing(t *testing.T) {
	e, _ := newEngine(t, 100, 100, Options{})
	drag(e, pt(10, 10), pt(50, 50))
	if err := e.OnResize(300, 200); err != nil {
		t.Fatal(err)
	}
	if e.Capture().RGBAAt(30, 30).A != 255 {
		t.Error("stroke lost across resize")
	}
	if err := e.OnResize(0, 0); err == nil || !errors.Is(err, raster.ErrInvalidSurface) {
		t.Errorf("OnResize(0, 0) error = %v", err)
	}
	if w, h := e.Size(); w != 300 || h != 200 {
		t.Errorf("Size() = %dx%d after invalid resize", w, h)
	}
}

func TestResizeMidShapeSession(t *testing.T) {
	e, _ := newEngine(t, 100, 100, Options{Tool: state.ToolRect})
	e.Begin(pt(10, 10))
	e.Move(pt(90, 90))
	if err := e.OnResize(200, 150); err != nil {
		t.Fatal(err)
	}
	e.Move(pt(150, 120))
	e.End()

	ref := raster.NewSurface()
	if err := ref.Resize(200, 150); err != nil {
		t.Fatal(err)
	}
	if err := ref.CommitShapeOutline(state.ToolRect, pt(10, 10), pt(150, 120), whitePen); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e.Capture().Pix, ref.Image().Pix) {
		t.Error("preview after resize left stale frames")
	}
}

func TestRejectedResizeKeepsShapePreview(t *testing.T) {
	e, commits := newEngine(t, 100, 100, Options{Tool: state.ToolRect})
	e.Begin(pt(10, 10))
	e.Move(pt(90, 90))
	before := e.Capture()

	if err := e.OnResize(0, 0); !errors.Is(err, raster.ErrInvalidSurface) {
		t.Fatalf("OnResize(0, 0) error = %v", err)
	}
	if !bytes.Equal(e.Capture().Pix, before.Pix) {
		t.Error("rejected resize changed the buffer")
	}
	e.End()

	if e.Capture().RGBAAt(10, 50).A != 255 {
		t.Error("committed rectangle lost its left edge")
	}
	if e.HistoryLen() != 1 || len(*commits) != 1 {
		t.Errorf("HistoryLen() = %d, commits = %d", e.HistoryLen(), len(*commits))
	}
}

func TestInvalidSurfaceSkipsMutations(t *testing.T) {
	e := New(Options{})
	drag(e, pt(1, 1), pt(5, 5))
	if err := e.OnClearRequested(); err != nil {
		t.Errorf("OnClearRequested() error = %v", err)
	}
	if err := e.OnUndoRequested(); err != nil {
		t.Errorf("OnUndoRequested() error = %v", err)
	}
	if e.HistoryLen() != 0 || e.Phase() != Idle {
		t.Errorf("HistoryLen() = %d, Phase() = %v", e.HistoryLen(), e.Phase())
	}
}

func TestToolSwitchFinalizesSession(t *testing.T) {
	e, commits := newEngine(t, 100, 100, Options{})
	e.Begin(pt(10, 10))
	e.Move(pt(40, 40))
	e.SetTool(state.ToolRect)

	if e.Phase() != Idle {
		t.Errorf("Phase() = %v, want idle after tool switch", e.Phase())
	}
	if len(*commits) != 1 || (*commits)[0].Tool != state.ToolPen {
		t.Errorf("commits = %v, want the pen stroke finalized", *commits)
	}
	e.Move(pt(90, 90))
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
}

func TestToolSwitchFinalizesText(t *testing.T) {
	tests := []struct {
		name        string
		pending     string
		wantHistory int
	}{
		{"commits pending text", "hello", 1},
		{"discards blank text", "   ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t, 200, 100, Options{Tool: state.ToolText})
			e.Begin(pt(10, 10))
			e.EditText(tt.pending)
			e.SetTool(state.ToolPen)
			if e.Phase() != Idle {
				t.Errorf("Phase() = %v", e.Phase())
			}
			if e.HistoryLen() != tt.wantHistory {
				t.Errorf("HistoryLen() = %d, want %d", e.HistoryLen(), tt.wantHistory)
			}
		})
	}
}

func TestPointerDownElsewhereCommitsText(t *testing.T) {
	e, _ := newEngine(t, 200, 100, Options{Tool: state.ToolText})
	e.Begin(pt(10, 10))
	e.EditText("first")
	e.Begin(pt(100, 50))
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
	if a, _ := e.TextAnchor(); a != pt(100, 50) {
		t.Errorf("TextAnchor() = %v, want new click", a)
	}
	e.CancelText()
	if e.Phase() != Idle || e.HistoryLen() != 1 {
		t.Errorf("CancelText: Phase() = %v, HistoryLen() = %d", e.Phase(), e.HistoryLen())
	}
}

func TestEraserModeDoesNotLeak(t *testing.T) {
	e, _ := newEngine(t, 100, 100, Options{Tool: state.ToolEraser})
	drag(e, pt(10, 50), pt(90, 50))

	e.SetTool(state.ToolRect)
	drag(e, pt(20, 20), pt(80, 80))
	if e.Capture().RGBAAt(50, 20).A == 0 {
		t.Error("rectangle after eraser erased instead of painting")
	}
}

func TestEraserRemovesOnlyItsPath(t *testing.T) {
	e, _ := newEngine(t, 100, 100, Options{Settings: state.Settings{Color: "#000000", Width: 20, Opacity: 1}})
	drag(e, pt(10, 30), pt(90, 30))
	drag(e, pt(10, 70), pt(90, 70))

	e.SetTool(state.ToolEraser)
	e.SetSettings(state.Settings{Color: "#000000", Width: 6, Opacity: 1})
	drag(e, pt(50, 0), pt(50, 40))

	img := e.Capture()
	if img.RGBAAt(50, 30).A != 0 {
		t.Error("eraser left pixels on its path")
	}
	if img.RGBAAt(20, 30).A != 255 || img.RGBAAt(50, 70).A != 255 {
		t.Error("eraser touched pixels outside its path")
	}
}

func TestClickWithoutMoveLeavesDot(t *testing.T) {
	e, commits := newEngine(t, 40, 40, Options{})
	e.Begin(pt(20, 20))
	e.End()
	if e.Capture().RGBAAt(20, 20).A == 0 {
		t.Error("click did not leave a dot")
	}
	if len(*commits) != 1 {
		t.Errorf("commits = %d", len(*commits))
	}
	e.End()
	if len(*commits) != 1 {
		t.Error("second End notified again")
	}
}

func TestDispatch(t *testing.T) {
	e, commits := newEngine(t, 60, 60, Options{})
	cmds := []Command{
		SelectToolCommand{Tool: state.ToolLine},
		SettingsCommand{Settings: state.Settings{Color: "#FF0000", Width: 50, Opacity: 2}},
		PointerCommand{Phase: PointerDown, At: pt(5, 5)},
		PointerCommand{Phase: PointerMove, At: pt(55, 55)},
		PointerCommand{Phase: PointerUp},
		ClearCommand{},
		UndoCommand{},
		SelectToolCommand{Tool: state.ToolText},
		PointerCommand{Phase: PointerDown, At: pt(5, 5)},
		CancelTextCommand{},
		PointerCommand{Phase: PointerDown, At: pt(5, 5)},
		CommitTextCommand{Text: "x"},
		ResizeCommand{Width: 80, Height: 80},
		nil,
	}
	for i, c := range cmds {
		if err := e.Dispatch(c); err != nil {
			t.Fatalf("Dispatch(%d: %T) error = %v", i, c, err)
		}
	}
	if got := e.Settings(); got.Width != state.MaxWidth || got.Opacity != 1 {
		t.Errorf("Settings() = %+v, want clamped", got)
	}
	wantKinds := []CommitKind{CommitShape, CommitClear, CommitUndo, CommitText}
	if len(*commits) != len(wantKinds) {
		t.Fatalf("commits = %v", *commits)
	}
	for i, k := range wantKinds {
		if (*commits)[i].Kind != k {
			t.Errorf("commit %d = %v, want %v", i, (*commits)[i].Kind, k)
		}
	}
	if w, h := e.Size(); w != 80 || h != 80 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}

func TestPhaseAndKindStrings(t *testing.T) {
	if Idle.String() != "idle" || SessionActive.String() != "session" || TextEditing.String() != "text" {
		t.Error("Phase.String mapping wrong")
	}
	if CommitClear.String() != "clear" || CommitUndo.String() != "undo" {
		t.Error("CommitKind.String mapping wrong")
	}
	if got := CommitKind(42).String(); got != "CommitKind(42)" {
		t.Errorf("CommitKind(42).String() = %q", got)
	}
}
