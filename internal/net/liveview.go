// Package net shares a read-only live view of the board on the LAN: PNG
// frames over a websocket, advertised with mDNS.
package net

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SketchBoard/internal/export"
	"SketchBoard/internal/logging"
)

const LivePath = "/live"

const viewerPage = `<!doctype html>
<html><head><title>SketchBoard</title>
<style>body{margin:0;background:#fff}img{max-width:100vw;max-height:100vh}</style>
</head><body><img id="board" alt="waiting for the board">
<script>
const img = document.getElementById("board");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/live");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
  const old = img.src;
  img.src = URL.createObjectURL(ev.data);
  if (old) URL.revokeObjectURL(old);
};
</script></body></html>`

// LiveView streams board frames to connected viewers. Publish is called from
// the UI goroutine; encoding and fan-out happen in Run.
type LiveView struct {
	peers    *PeerManager
	frames   chan image.Image
	upgrader websocket.Upgrader

	mu     sync.Mutex
	latest []byte
}

func NewLiveView() *LiveView {
	return &LiveView{
		peers:  NewPeerManager(),
		frames: make(chan image.Image, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// Viewers are browsers on the LAN opening the share link.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Viewers reports how many viewers are connected.
func (lv *LiveView) Viewers() int { return lv.peers.Len() }

// Publish queues img for broadcast, replacing any frame not yet sent. img
// must not be modified afterwards.
func (lv *LiveView) Publish(img image.Image) {
	if img == nil {
		return
	}
	select {
	case lv.frames <- img:
		return
	default:
	}
	select {
	case <-lv.frames:
	default:
	}
	select {
	case lv.frames <- img:
	default:
	}
}

// Run encodes published frames and fans them out until ctx is done.
func (lv *LiveView) Run(ctx context.Context) {
	defer lv.peers.CloseAll()
	for {
		select {
		case <-ctx.Done():
			return
		case img := <-lv.frames:
			var buf bytes.Buffer
			if err := export.PNG(&buf, img); err != nil {
				logging.Logger().Warn("net: encode frame", "err", err)
				continue
			}
			frame := buf.Bytes()
			lv.mu.Lock()
			lv.latest = frame
			lv.peers.Broadcast(frame)
			lv.mu.Unlock()
		}
	}
}

// Handler serves the viewer page at / and the frame stream at LivePath.
func (lv *LiveView) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, viewerPage)
	})
	mux.HandleFunc("GET "+LivePath, lv.serveLive)
	return mux
}

func (lv *LiveView) serveLive(w http.ResponseWriter, r *http.Request) {
	conn, err := lv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Debug("net: upgrade failed", "err", err)
		return
	}
	p := newPeer(conn)

	// Holding mu orders the join against Run: the peer either receives the
	// current frame here or the next broadcast, never both.
	lv.mu.Lock()
	ok := lv.peers.Add(p, lv.latest)
	lv.mu.Unlock()
	if !ok {
		conn.Close()
		return
	}

	go p.writeLoop()
	// Viewers never send anything; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	lv.peers.Remove(p)
}

// Serve listens on port, advertises the view over mDNS when advertise is
// set, and blocks until ctx is done.
func (lv *LiveView) Serve(ctx context.Context, port int, advertise bool) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	srv := &http.Server{Handler: lv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	logging.Logger().Info("net: live view listening", "port", port)

	if advertise {
		md, err := Advertise(port)
		if err != nil {
			logging.Logger().Warn("net: mdns advertisement unavailable", "err", err)
		} else {
			defer md.Shutdown()
		}
	}

	go lv.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve live view: %w", err)
	}
	return nil
}
