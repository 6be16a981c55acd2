package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ticketExpiry = 12 * time.Hour
	bcryptCost   = 10
)

var (
	ErrBadTicket   = errors.New("invalid join ticket")
	ErrBadPassword = errors.New("wrong room password")
)

// JoinAuth gates the host's /ws endpoint. A client needs a ticket signed
// for this session and, if one is set, the room password.
type JoinAuth struct {
	sessionID string
	secret    []byte
	passHash  []byte // nil when the room is open
}

// NewJoinAuth creates the gate for a session. The signing secret comes from
// secretHex if set, else the database, else is generated and persisted.
func NewJoinAuth(db *DB, sessionID, password, secretHex string) (*JoinAuth, error) {
	a := &JoinAuth{sessionID: sessionID}
	if secretHex != "" {
		b, err := hex.DecodeString(secretHex)
		if err != nil || len(b) < 16 {
			return nil, fmt.Errorf("ticket secret must be at least 16 hex-encoded bytes")
		}
		a.secret = b
	} else {
		a.secret = loadOrCreateSecret(db)
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		a.passHash = hash
	}
	return a, nil
}

// loadOrCreateSecret loads the ticket secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("ticket_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate ticket secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("ticket_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist ticket secret: %v", err)
		}
	}
	return secret
}

// IssueTicket signs a join ticket for this session
func (a *JoinAuth) IssueTicket() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid":  a.sessionID,
		"role": string(PeerClient),
		"exp":  now.Add(ticketExpiry).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateTicket checks the signature, expiry and session binding
func (a *JoinAuth) ValidateTicket(tokenStr string) error {
	if tokenStr == "" {
		return ErrBadTicket
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadTicket, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrBadTicket
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid != a.sessionID {
		return fmt.Errorf("%w: wrong session", ErrBadTicket)
	}
	return nil
}

// CheckPassword compares a supplied room password against the stored hash
func (a *JoinAuth) CheckPassword(password string) error {
	if a.passHash == nil {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// HasPassword reports whether the room is password protected
func (a *JoinAuth) HasPassword() bool {
	return a.passHash != nil
}
