package net

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"SketchBoard/internal/logging"
)

const (
	writeWait  = 5 * time.Second
	peerBuffer = 2
)

// Peer is one connected live-view browser.
type Peer struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

func newPeer(conn *websocket.Conn) *Peer {
	return &Peer{ID: uuid.NewString(), conn: conn, send: make(chan []byte, peerBuffer)}
}

// writeLoop delivers queued frames until send is closed or a write fails.
func (p *Peer) writeLoop() {
	defer p.conn.Close()
	for frame := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			logging.Logger().Debug("net: write failed", "peer", p.ID, "err", err)
			return
		}
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// PeerManager tracks connected peers.
type PeerManager struct {
	peers  map[string]*Peer
	closed bool
	mu     sync.RWMutex
}

func NewPeerManager() *PeerManager {
	return &PeerManager{peers: make(map[string]*Peer)}
}

// Add registers p and queues first for it when non-nil. It reports false
// once CloseAll has run.
func (pm *PeerManager) Add(p *Peer, first []byte) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.closed {
		return false
	}
	pm.peers[p.ID] = p
	if first != nil {
		p.send <- first
	}
	logging.Logger().Info("net: viewer connected", "peer", p.ID, "addr", p.conn.RemoteAddr().String())
	return true
}

// Remove forgets p and stops its writer. Removing twice is harmless.
func (pm *PeerManager) Remove(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.peers[p.ID]; !ok {
		return
	}
	delete(pm.peers, p.ID)
	close(p.send)
	logging.Logger().Info("net: viewer disconnected", "peer", p.ID)
}

func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast queues frame for every peer. A peer whose queue is full misses
// the frame; the next one supersedes it anyway.
func (pm *PeerManager) Broadcast(frame []byte) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, p := range pm.peers {
		select {
		case p.send <- frame:
		default:
			logging.Logger().Debug("net: frame dropped for slow viewer", "peer", p.ID)
		}
	}
}

// CloseAll disconnects every peer and refuses new ones.
func (pm *PeerManager) CloseAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.closed = true
	for id, p := range pm.peers {
		delete(pm.peers, id)
		close(p.send)
	}
}
