package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"

	"SketchBoard/internal/config"
	"SketchBoard/internal/engine"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"
)

// RunApp opens the board window and blocks until it is closed. shareLink,
// when set, is shown in the status bar; onFrame receives each committed
// frame.
func RunApp(a fyne.App, cfg config.Config, shareLink string, onFrame func(image.Image)) {
	myWindow := a.NewWindow("SketchBoard")
	myWindow.Resize(fyne.NewSize(1024, 768))

	board := NewBoardWidget(engine.New(cfg.EngineOptions()))
	board.OnFrame = onFrame
	board.OnSettingsChanged = func(t state.Tool, s state.Settings) {
		cfg.Tool, cfg.Settings = t, s
		cfg.Save(a.Preferences())
	}
	if shareLink != "" {
		board.SetStatus("Live view: " + shareLink)
	}

	toolbar := NewToolbar(board, myWindow)
	content := container.NewBorder(toolbar, board.StatusBar(), nil, nil, board)
	myWindow.SetContent(content)

	myWindow.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { board.Undo() })

	logging.Logger().Info("ui: window open", "tool", cfg.Tool, "historyLimit", cfg.HistoryLimit)
	myWindow.ShowAndRun()
}
