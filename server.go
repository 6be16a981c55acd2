package main

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HostEndpoint is what the host's HTTP routes serve
type HostEndpoint struct {
	SessionID string
	Game      *Game
	Link      *PeerLink
	Auth      *JoinAuth
	// PublicURL is the base URL the partner reaches this host at
	PublicURL string
}

// JoinURL builds the URL a client dials, ticket included
func (h *HostEndpoint) JoinURL() (string, error) {
	base := strings.TrimRight(h.PublicURL, "/")
	u, err := url.Parse(base + "/ws")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if h.Auth != nil {
		ticket, err := h.Auth.IssueTicket()
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("ticket", ticket)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// attach connects a freshly upgraded partner to the game
func (h *HostEndpoint) attach(conn *websocket.Conn, ip string) {
	peer := NewPeer(conn, true, ip)
	if !h.Link.Attach(peer) {
		conn.Close()
		return
	}
	h.Game.PartnerAttached()
	peer.SetReceiver(h.Game)
	peer.OnClose(func(p *Peer) {
		h.Link.Detach(p)
		log.Printf("peer: partner %s left", p.remoteAddr)
	})
	peer.Start()
	peer.SendJSON(Envelope{T: MsgWelcome, Data: h.Game.Welcome(h.SessionID)})
	log.Printf("peer: partner %s joined session %s", ip, h.SessionID)
}

// SetupRoutes configures HTTP routes
func SetupRoutes(h *HostEndpoint) *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket endpoint, exactly one partner at a time
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if h.Auth != nil {
			if err := h.Auth.ValidateTicket(r.URL.Query().Get("ticket")); err != nil {
				http.Error(w, "invalid ticket", http.StatusUnauthorized)
				return
			}
			if err := h.Auth.CheckPassword(r.Header.Get(PasswordHeader)); err != nil {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}
		}
		if h.Link.Busy() {
			http.Error(w, "session full", http.StatusConflict)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}
		h.attach(conn, extractIP(r))
	})

	// QR code of the join URL for pairing from another device
	mux.HandleFunc("/join.png", func(w http.ResponseWriter, r *http.Request) {
		joinURL, err := h.JoinURL()
		if err != nil {
			http.Error(w, "join url unavailable", http.StatusInternalServerError)
			return
		}
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(png)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		hud := h.Game.HUD()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"session": h.SessionID,
			"partner": h.Link.IsConnected(),
			"level":   hud.Level,
			"dead":    hud.GameDead,
		})
	})

	return mux
}

// isClosedConnErr reports errors that just mean the listener shut down
func isClosedConnErr(err error) bool {
	return errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed)
}
