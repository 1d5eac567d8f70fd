package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/engine"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/raster"
	"SketchBoard/internal/state"
)

// BoardWidget hosts the drawing engine: it turns pointer input into engine
// commands and renders the screen-share frame, the background image and the
// raster, bottom to top.
type BoardWidget struct {
	widget.BaseWidget
	engine *engine.Engine

	video      image.Image
	background image.Image

	entry     *textEntry
	statusBar *widget.Label

	// OnFrame receives a composed copy of the board after every commit.
	OnFrame func(image.Image)
	// OnSettingsChanged fires after a tool or settings change from the UI.
	OnSettingsChanged func(state.Tool, state.Settings)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(e *engine.Engine) *BoardWidget {
	b := &BoardWidget{
		engine:    e,
		statusBar: widget.NewLabel("Ready"),
	}
	b.entry = newTextEntry(b.commitText, b.cancelText)
	b.entry.OnChanged = e.EditText
	b.entry.Hide()
	e.OnCommit = b.onCommit
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) Engine() *engine.Engine { return b.engine }

// StatusBar is the label the board reports status messages on.
func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// SetStatus may be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

// SetBackgroundImage sets the static image drawn beneath the raster. Nil
// removes it.
func (b *BoardWidget) SetBackgroundImage(img image.Image) {
	fyne.Do(func() {
		b.background = img
		b.Refresh()
	})
}

// SetVideoFrame sets the screen-share frame drawn beneath everything else.
// It may be called from any goroutine.
func (b *BoardWidget) SetVideoFrame(img image.Image) {
	fyne.Do(func() {
		b.video = img
		b.Refresh()
	})
}

// Frame composes the board as the user sees it.
func (b *BoardWidget) Frame() *image.RGBA {
	layer := b.engine.Capture()
	w, h := layer.Bounds().Dx(), layer.Bounds().Dy()
	return composeLayers(w, h, b.video, b.background, layer)
}

func composeLayers(w, h int, layers ...image.Image) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	return raster.Compose(w, h, layers...)
}

func (b *BoardWidget) Dispatch(cmd engine.Command) {
	if err := b.engine.Dispatch(cmd); err != nil {
		logging.Logger().Warn("board: command failed", "command", cmd, "err", err)
		b.SetStatus(err.Error())
	}
	b.Refresh()
}

func (b *BoardWidget) SelectTool(t state.Tool) {
	b.commitText()
	b.Dispatch(engine.SelectToolCommand{Tool: t})
	b.settingsChanged()
}

func (b *BoardWidget) SetSettings(s state.Settings) {
	b.Dispatch(engine.SettingsCommand{Settings: s})
	b.settingsChanged()
}

func (b *BoardWidget) ClearBoard() { b.Dispatch(engine.ClearCommand{}) }
func (b *BoardWidget) Undo()       { b.Dispatch(engine.UndoCommand{}) }

func (b *BoardWidget) settingsChanged() {
	if b.OnSettingsChanged != nil {
		b.OnSettingsChanged(b.engine.Tool(), b.engine.Settings())
	}
}

func (b *BoardWidget) onCommit(c engine.Commit) {
	if b.OnFrame != nil {
		b.OnFrame(b.Frame())
	}
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (b *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.commitText()
	b.Dispatch(engine.PointerCommand{Phase: engine.PointerDown, At: toPoint(ev.Position)})
	if b.engine.Phase() == engine.TextEditing {
		b.showEntry()
	}
}

func (b *BoardWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		b.endSession()
	}
}

func (b *BoardWidget) Dragged(ev *fyne.DragEvent) {
	if b.engine.Phase() != engine.SessionActive {
		return
	}
	b.Dispatch(engine.PointerCommand{Phase: engine.PointerMove, At: toPoint(ev.Position)})
}

func (b *BoardWidget) DragEnd() { b.endSession() }

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

// MouseOut ends the session the same way releasing the button does.
func (b *BoardWidget) MouseOut() { b.endSession() }

func (b *BoardWidget) endSession() {
	if b.engine.Phase() == engine.SessionActive {
		b.Dispatch(engine.PointerCommand{Phase: engine.PointerUp})
	}
}

func (b *BoardWidget) showEntry() {
	b.entry.SetText("")
	b.entry.Show()
	b.Refresh()
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b.entry)
	}
}

// commitText paints the overlay's text, if an edit is pending.
func (b *BoardWidget) commitText() {
	if !b.entry.Visible() {
		return
	}
	b.entry.Hide()
	if b.engine.Phase() == engine.TextEditing {
		b.Dispatch(engine.CommitTextCommand{Text: b.entry.Text})
	}
}

func (b *BoardWidget) cancelText() {
	b.entry.Hide()
	b.Dispatch(engine.CancelTextCommand{})
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{
		board:      b,
		background: canvas.NewRectangle(color.White),
		image:      canvas.NewImageFromImage(image.NewRGBA(image.Rectangle{})),
	}
	r.image.FillMode = canvas.ImageFillStretch
	r.image.ScaleMode = canvas.ImageScalePixels
	return r
}

type boardRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	image      *canvas.Image
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.image, r.board.entry}
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.image.Resize(size)
	if err := r.board.engine.OnResize(int(size.Width), int(size.Height)); err != nil {
		logging.Logger().Debug("board: resize ignored", "err", err)
	}
	r.layoutEntry()
}

func (r *boardRenderer) layoutEntry() {
	anchor, ok := r.board.engine.TextAnchor()
	if !ok {
		return
	}
	e := r.board.entry
	width := float32(160)
	if bounds, err := r.board.engine.TextBounds(e.Text); err == nil && float32(bounds.Dx())+40 > width {
		width = float32(bounds.Dx()) + 40
	}
	e.Resize(fyne.NewSize(width, e.MinSize().Height))
	e.Move(fyne.NewPos(float32(anchor.X), float32(anchor.Y)))
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardRenderer) Refresh() {
	r.image.Image = r.board.Frame()
	r.image.Refresh()
	r.layoutEntry()
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Destroy() {}
