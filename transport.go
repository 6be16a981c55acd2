package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Transport is the outgoing side of the peer channel as the simulation
// sees it. Delivery is best effort.
type Transport interface {
	SendGameEvent(eventType string, payload interface{})
	SendPlayerState(s PlayerState)
	SendSnapshot(s Snapshot)
	IsHost() bool
	IsConnected() bool
}

// Receiver is the incoming side. Calls arrive on the transport's read
// goroutine; implementations serialise them against the tick.
type Receiver interface {
	HandleGameEvent(eventType string, data json.RawMessage)
	HandlePlayerState(s PlayerState)
	HandleSnapshot(s Snapshot)
	HandleWelcome(msg WelcomeMsg)
}

// encodeFrame builds a binary frame: kind byte followed by msgpack body
func encodeFrame(kind byte, v interface{}) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame %#x: %w", kind, err)
	}
	out := make([]byte, len(body)+1)
	out[0] = kind
	copy(out[1:], body)
	return out, nil
}

// decodeFrame dispatches a binary frame to r
func decodeFrame(raw []byte, r Receiver) error {
	if len(raw) < 2 {
		return fmt.Errorf("short frame (%d bytes)", len(raw))
	}
	switch raw[0] {
	case FramePlayerState:
		var s PlayerState
		if err := msgpack.Unmarshal(raw[1:], &s); err != nil {
			return fmt.Errorf("decode player state: %w", err)
		}
		r.HandlePlayerState(s)
	case FrameSnapshot:
		var s Snapshot
		if err := msgpack.Unmarshal(raw[1:], &s); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		r.HandleSnapshot(s)
	default:
		return fmt.Errorf("unknown frame kind %#x", raw[0])
	}
	return nil
}

// PeerLink is a stable Transport in front of whichever Peer is currently
// attached. The host keeps one for the session and swaps partners as they
// connect and drop.
type PeerLink struct {
	mu     sync.RWMutex
	isHost bool
	peer   *Peer
}

// NewPeerLink creates an empty link
func NewPeerLink(isHost bool) *PeerLink {
	return &PeerLink{isHost: isHost}
}

// Attach makes p the current partner. Returns false if another live peer
// is already attached.
func (l *PeerLink) Attach(p *Peer) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.peer != nil && l.peer.IsConnected() {
		return false
	}
	l.peer = p
	return true
}

// Detach clears the link if p is still the current partner
func (l *PeerLink) Detach(p *Peer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.peer == p {
		l.peer = nil
	}
}

// Busy reports whether a live partner is attached
func (l *PeerLink) Busy() bool {
	return l.IsConnected()
}

func (l *PeerLink) current() *Peer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.peer
}

func (l *PeerLink) SendGameEvent(eventType string, payload interface{}) {
	if p := l.current(); p != nil {
		p.SendGameEvent(eventType, payload)
	}
}

func (l *PeerLink) SendPlayerState(s PlayerState) {
	if p := l.current(); p != nil {
		p.SendPlayerState(s)
	}
}

func (l *PeerLink) SendSnapshot(s Snapshot) {
	if p := l.current(); p != nil {
		p.SendSnapshot(s)
	}
}

func (l *PeerLink) IsHost() bool { return l.isHost }

func (l *PeerLink) IsConnected() bool {
	p := l.current()
	return p != nil && p.IsConnected()
}
