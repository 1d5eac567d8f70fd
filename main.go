package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/gogpu/gg"

	"SketchBoard/internal/config"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/net"
	"SketchBoard/internal/ui"
)

const AppID = "io.sketchboard.app"

func main() {
	share := flag.Bool("share", false, "serve a read-only live view on the LAN")
	port := flag.Int("port", 0, "live view port (default: saved preference, 8888)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	discover := flag.Duration("discover", 0, "list boards shared on the LAN for this long, then exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(*logLevel)}))
	logging.SetLogger(logger)
	gg.SetLogger(logger)

	if *discover > 0 {
		if err := runDiscover(*discover); err != nil {
			logger.Error("discover failed", "err", err)
			os.Exit(1)
		}
		return
	}

	a := app.NewWithID(AppID)
	cfg := config.Load(a.Preferences())
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "share":
			cfg.ShareEnabled = *share
		case "port":
			if *port > 0 {
				cfg.SharePort = *port
			}
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var shareLink string
	var onFrame func(image.Image)
	if cfg.ShareEnabled {
		shareLink, onFrame = startLiveView(ctx, cfg.SharePort)
	}

	logger.Info("starting", "share", cfg.ShareEnabled, "link", shareLink)
	ui.RunApp(a, cfg, shareLink, onFrame)
}

func startLiveView(ctx context.Context, port int) (string, func(image.Image)) {
	lv := net.NewLiveView()
	go func() {
		if err := lv.Serve(ctx, port, true); err != nil {
			logging.Logger().Error("live view stopped", "err", err)
		}
	}()

	host, err := net.OutgoingIP()
	if err != nil {
		logging.Logger().Warn("no share address", "err", err)
		host = "localhost"
	}
	return net.ShareLink(host, port), lv.Publish
}

func runDiscover(timeout time.Duration) error {
	return net.Discover(timeout, func(link string) {
		fmt.Println(link)
	})
}
