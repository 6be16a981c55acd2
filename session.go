package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/skip2/go-qrcode"
)

// Session is one peer's run: the game, its link to the partner and the
// ambient services around it
type Session struct {
	ID   string
	Game *Game
	Link *PeerLink

	cfg     Config
	db      *DB
	journal *Journal
	auth    *JoinAuth

	// Input, if set, is polled once per frame for local control
	Input func() AvatarInput

	lastLevel int
	lastKills int
	linked    bool
}

// NewSession opens persistence and builds the game for cfg
func NewSession(cfg Config) (*Session, error) {
	s := &Session{
		ID:  GenerateUUID(),
		cfg: cfg,
	}

	if cfg.DBPath != "" {
		db, err := OpenDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		s.db = db
		if err := db.CreateSession(s.ID, cfg.Role, cfg.Level); err != nil {
			db.Close()
			return nil, fmt.Errorf("create session row: %w", err)
		}
		s.journal = NewJournal(db, s.ID)
	}

	opts := GameOptions{
		Local:         PeerHost,
		Level:         cfg.Level,
		StatePushRate: cfg.PushRate,
		SnapshotRate:  cfg.SnapshotRate,
	}
	if s.journal != nil {
		opts.Log = s.journal
	}

	switch cfg.Role {
	case "host":
		s.Link = NewPeerLink(true)
		opts.Transport = s.Link
		auth, err := NewJoinAuth(s.db, s.ID, cfg.Password, cfg.TicketSecret)
		if err != nil {
			s.close()
			return nil, err
		}
		s.auth = auth
	case "client":
		s.Link = NewPeerLink(false)
		opts.Transport = s.Link
		opts.Local = PeerClient
	}

	s.Game = NewGame(opts)
	s.lastLevel = cfg.Level
	return s, nil
}

// Run drives the session until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	defer s.close()

	var srv *http.Server
	switch s.cfg.Role {
	case "host":
		var err error
		srv, err = s.serve()
		if err != nil {
			return err
		}
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	case "client":
		peer, err := DialHost(ctx, s.cfg.HostURL, s.cfg.Ticket, s.cfg.Password)
		if err != nil {
			return err
		}
		s.Link.Attach(peer)
		peer.SetReceiver(s.Game)
		peer.OnClose(func(p *Peer) {
			s.Link.Detach(p)
			log.Printf("peer: host %s closed the link", p.remoteAddr)
		})
		peer.Start()
		defer peer.Close()
		log.Printf("peer: connected to %s", s.cfg.HostURL)
	}

	return s.frameLoop(ctx)
}

// serve starts the host's HTTP endpoint and prints the join details
func (s *Session) serve() (*http.Server, error) {
	h := &HostEndpoint{
		SessionID: s.ID,
		Game:      s.Game,
		Link:      s.Link,
		Auth:      s.auth,
		PublicURL: s.cfg.PublicURL,
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	srv := &http.Server{Handler: SetupRoutes(h)}
	go func() {
		if err := srv.Serve(ln); err != nil && !isClosedConnErr(err) {
			log.Printf("http: serve error: %v", err)
		}
	}()

	joinURL, err := h.JoinURL()
	if err != nil {
		return srv, nil
	}
	log.Printf("Hosting session %s on %s", s.ID, ln.Addr())
	log.Printf("Join URL: %s", joinURL)
	if qr, err := qrcode.New(joinURL, qrcode.Low); err == nil {
		fmt.Println(qr.ToSmallString(false))
	}
	return srv, nil
}

// frameLoop is the frame driver: it feeds elapsed wall time to the game
func (s *Session) frameLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FrameRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if s.Input != nil {
				s.Game.SetInput(s.Input())
			}
			s.Game.Advance(now.Sub(last))
			last = now
			s.recordProgress()
			s.watchLink()
		}
	}
}

// watchLink logs partner link transitions. A dropped link leaves the game
// running solo.
func (s *Session) watchLink() {
	if s.Link == nil {
		return
	}
	up := s.Link.IsConnected()
	if up == s.linked {
		return
	}
	s.linked = up
	if up {
		log.Printf("session %s: partner linked, role %s", s.ID, s.Game.Role().Name())
	} else {
		log.Printf("session %s: partner gone, continuing solo", s.ID)
	}
}

// recordProgress persists level and kill changes
func (s *Session) recordProgress() {
	if s.db == nil {
		return
	}
	hud := s.Game.HUD()
	if hud.Level == s.lastLevel && hud.Kills == s.lastKills {
		return
	}
	s.lastLevel, s.lastKills = hud.Level, hud.Kills
	if err := s.db.UpdateSession(s.ID, hud.Level, hud.Kills); err != nil {
		log.Printf("db: update session %s: %v", s.ID, err)
	}
}

func (s *Session) close() {
	if s.journal != nil {
		s.journal.Stop()
		s.journal = nil
	}
	if s.db == nil {
		return
	}
	if s.Game == nil {
		s.db.Close()
		s.db = nil
		return
	}
	hud := s.Game.HUD()
	cause := hud.DeathCause
	switch {
	case hud.Victory:
		cause = "victory"
	case cause == "":
		cause = "quit"
	}
	if err := s.db.EndSession(s.ID, cause, hud.Level, hud.Kills); err != nil {
		log.Printf("db: end session %s: %v", s.ID, err)
	}
	s.db.Close()
	s.db = nil
}
