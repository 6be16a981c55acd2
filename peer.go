package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 64 * 1024
	sendBufSize       = 256
	maxMessagesPerSec = 200
)

// PasswordHeader carries the optional room password on the join request
const PasswordHeader = "X-Room-Password"

// Peer is the WebSocket connection to the partner. Events travel as JSON
// text frames, continuous state as msgpack binary frames.
type Peer struct {
	conn       *websocket.Conn
	send       chan []byte
	isHost     bool
	remoteAddr string
	connected  atomic.Bool
	msgCount   int
	msgResetAt time.Time

	mu      sync.RWMutex
	recv    Receiver
	onClose func(*Peer)

	closeOnce sync.Once
	done      chan struct{}
}

// NewPeer wraps an established connection. isHost is this side's role.
func NewPeer(conn *websocket.Conn, isHost bool, remoteAddr string) *Peer {
	p := &Peer{
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		isHost:     isHost,
		remoteAddr: remoteAddr,
		done:       make(chan struct{}),
	}
	p.connected.Store(true)
	return p
}

// SetReceiver routes inbound traffic to r
func (p *Peer) SetReceiver(r Receiver) {
	p.mu.Lock()
	p.recv = r
	p.mu.Unlock()
}

// OnClose registers a callback run once when the connection ends
func (p *Peer) OnClose(fn func(*Peer)) {
	p.mu.Lock()
	p.onClose = fn
	p.mu.Unlock()
}

func (p *Peer) receiver() Receiver {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.recv
}

// Start launches the read and write pumps
func (p *Peer) Start() {
	go p.WritePump()
	go p.ReadPump()
}

// Done is closed when the connection has ended
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

// Close tears down the connection
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		p.connected.Store(false)
		close(p.done)
		p.conn.Close()
		p.mu.RLock()
		fn := p.onClose
		p.mu.RUnlock()
		if fn != nil {
			fn(p)
		}
	})
}

// ReadPump reads messages from the WebSocket connection
func (p *Peer) ReadPump() {
	defer p.Close()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("peer: ws error: %v", err)
			}
			return
		}

		// Rate limiting
		now := time.Now()
		if now.After(p.msgResetAt) {
			p.msgCount = 0
			p.msgResetAt = now.Add(time.Second)
		}
		p.msgCount++
		if p.msgCount > maxMessagesPerSec {
			log.Printf("peer: rate limit exceeded for %s, disconnecting", p.remoteAddr)
			return
		}

		r := p.receiver()
		if r == nil {
			continue
		}
		if msgType == websocket.BinaryMessage {
			if err := decodeFrame(message, r); err != nil {
				log.Printf("peer: %v", err)
			}
			continue
		}
		p.handleMessage(message, r)
	}
}

// WritePump writes messages to the WebSocket connection
func (p *Peer) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.Close()
	}()

	for {
		select {
		case message := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = p.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = p.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-p.done:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// handleMessage routes incoming text messages (single-pass decode via InEnvelope)
func (p *Peer) handleMessage(raw []byte, r Receiver) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("peer: unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgEvent:
		if env.E == "" {
			return
		}
		r.HandleGameEvent(env.E, env.D)
	case MsgWelcome:
		var msg WelcomeMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		r.HandleWelcome(msg)
	}
}

// SendJSON sends a JSON message to the partner
func (p *Peer) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("peer: marshal error: %v", err)
		return
	}
	p.SendRaw(data)
}

// SendRaw queues pre-marshaled bytes as a text message
func (p *Peer) SendRaw(data []byte) {
	if !p.connected.Load() {
		return
	}
	select {
	case p.send <- data:
	default:
		// Partner too slow, drop message
	}
}

// SendBinary queues pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (p *Peer) SendBinary(data []byte) {
	if !p.connected.Load() {
		return
	}
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case p.send <- msg:
	default:
	}
}

func (p *Peer) SendGameEvent(eventType string, payload interface{}) {
	p.SendJSON(Envelope{T: MsgEvent, E: eventType, Data: payload})
}

func (p *Peer) SendPlayerState(s PlayerState) {
	p.sendFrame(FramePlayerState, s)
}

func (p *Peer) SendSnapshot(s Snapshot) {
	p.sendFrame(FrameSnapshot, s)
}

func (p *Peer) sendFrame(kind byte, v interface{}) {
	data, err := encodeFrame(kind, v)
	if err != nil {
		log.Printf("peer: %v", err)
		return
	}
	p.SendBinary(data)
}

func (p *Peer) IsHost() bool { return p.isHost }

func (p *Peer) IsConnected() bool { return p.connected.Load() }

// DialHost connects a client peer to a host's /ws endpoint
func DialHost(ctx context.Context, hostURL, ticket, password string) (*Peer, error) {
	u, err := url.Parse(hostURL)
	if err != nil {
		return nil, fmt.Errorf("parse host url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	if ticket != "" {
		q := u.Query()
		q.Set("ticket", ticket)
		u.RawQuery = q.Encode()
	}
	header := http.Header{}
	if password != "" {
		header.Set(PasswordHeader, password)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", u.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}
	return NewPeer(conn, false, u.Host), nil
}
