package ui

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/export"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"
)

var palette = []color.NRGBA{
	{A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 255, A: 255},
	{G: 200, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 200, A: 255},
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

func toolNames() []string {
	tools := state.Tools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.String()
	}
	return names
}

// NewToolbar builds the tool, color, width and opacity controls plus the
// board actions for win.
func NewToolbar(board *BoardWidget, win fyne.Window) fyne.CanvasObject {
	eng := board.Engine()

	toolSelect := widget.NewSelect(toolNames(), func(name string) {
		t, err := state.ParseTool(name)
		if err != nil {
			logging.Logger().Warn("toolbar: unknown tool", "name", name)
			return
		}
		board.SelectTool(t)
	})
	toolSelect.SetSelected(eng.Tool().String())

	onColorTapped := func(c color.Color) {
		s := eng.Settings()
		s.Color = state.HexColor(c)
		board.SetSettings(s)
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	widthSlider := widget.NewSlider(state.MinWidth, state.MaxWidth)
	widthSlider.SetValue(eng.Settings().Width)
	widthSlider.OnChangeEnded = func(v float64) {
		s := eng.Settings()
		s.Width = v
		board.SetSettings(s)
	}

	opacitySlider := widget.NewSlider(0, 1)
	opacitySlider.Step = 0.05
	opacitySlider.SetValue(eng.Settings().Opacity)
	opacitySlider.OnChangeEnded = func(v float64) {
		s := eng.Settings()
		s.Opacity = v
		board.SetSettings(s)
	}

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), board.Undo),
		widget.NewToolbarAction(theme.DeleteIcon(), board.ClearBoard),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileImageIcon(), func() { openBackground(board, win) }),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { saveFrame(board, win) }),
	)

	sized := func(o fyne.CanvasObject) fyne.CanvasObject {
		return container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), o)
	}
	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sized(widthSlider),
		widget.NewLabel("Opacity:"),
		sized(opacitySlider),
		layout.NewSpacer(),
		actions,
	)
}

func openBackground(board *BoardWidget, win fyne.Window) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		img, err := decodeImage(r)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		board.SetBackgroundImage(img)
		board.SetStatus("Background: " + r.URI().Name())
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	d.Show()
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// saveFrame exports the composed board; the file extension picks PNG or PDF.
func saveFrame(board *BoardWidget, win fyne.Window) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				logging.Logger().Warn("toolbar: close export", "err", err)
			}
		}()
		if err := writeFrame(w, w.URI().Extension(), board.Frame()); err != nil {
			logging.Logger().Warn("toolbar: export failed", "uri", w.URI().String(), "err", err)
			dialog.ShowError(err, win)
			return
		}
		board.SetStatus("Saved " + w.URI().Name())
	}, win)
	d.SetFileName("board.png")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pdf"}))
	d.Show()
}

func writeFrame(w io.Writer, ext string, img image.Image) error {
	if strings.EqualFold(ext, ".pdf") {
		return export.WritePDF(w, img)
	}
	return export.PNG(w, img)
}
