package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// JournalEntry is one protocol event queued for persistence
type JournalEntry struct {
	SessionID string
	Direction string // "in" or "out"
	Type      string
	Data      string
	Timestamp time.Time
}

// Journal writes protocol events to the database in batches from a
// background goroutine so the tick never waits on disk
type Journal struct {
	db        *DB
	sessionID string
	events    chan JournalEntry
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	flushEvery time.Duration
	batchSize  int
}

// NewJournal creates and starts the journal writer for one session
func NewJournal(db *DB, sessionID string) *Journal {
	j := &Journal{
		db:         db,
		sessionID:  sessionID,
		events:     make(chan JournalEntry, 1024),
		stop:       make(chan struct{}),
		flushEvery: 5 * time.Second,
		batchSize:  50,
	}
	j.wg.Add(1)
	go j.writer()
	return j
}

// Track enqueues an entry for async persistence (non-blocking)
func (j *Journal) Track(direction, eventType, data string) {
	select {
	case j.events <- JournalEntry{
		SessionID: j.sessionID,
		Direction: direction,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full, drop rather than block the tick
	}
}

// LogEvent implements EventLog
func (j *Journal) LogEvent(direction, eventType string, payload interface{}) {
	var data string
	switch p := payload.(type) {
	case json.RawMessage:
		data = string(p)
	case nil:
	default:
		b, err := json.Marshal(p)
		if err != nil {
			log.Printf("journal: marshal %s: %v", eventType, err)
			return
		}
		data = string(b)
	}
	j.Track(direction, eventType, data)
}

// Stop flushes pending entries and stops the writer
func (j *Journal) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
		j.wg.Wait()
	})
}

// writer is the background goroutine that batches and writes entries
func (j *Journal) writer() {
	defer j.wg.Done()

	batch := make([]JournalEntry, 0, 64)
	ticker := time.NewTicker(j.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case e := <-j.events:
			batch = append(batch, e)
			if len(batch) >= j.batchSize {
				j.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				j.flush(batch)
				batch = batch[:0]
			}
		case <-j.stop:
			// Drain whatever is already queued
			for {
				select {
				case e := <-j.events:
					batch = append(batch, e)
				default:
					j.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of entries in one transaction
func (j *Journal) flush(entries []JournalEntry) {
	if j.db == nil || len(entries) == 0 {
		return
	}
	tx, err := j.db.conn.Begin()
	if err != nil {
		log.Printf("journal: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (session_id, direction, event_type, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("journal: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.SessionID, e.Direction, e.Type, e.Data, e.Timestamp.Format(time.RFC3339Nano)); err != nil {
			log.Printf("journal: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("journal: commit error: %v", err)
	}
}
