package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AnTengye/contractdesk/backend/pipeline"
)

type sessionKey struct {
	session string
	ledger  string
}

type sessionEntry struct {
	table    *pipeline.Table
	lastSeen time.Time
}

// TableSessions holds one pipeline.Table per client session and ledger.
// Tables idle for longer than the configured limit are dropped by Sweep.
type TableSessions struct {
	mu      sync.Mutex
	entries map[sessionKey]*sessionEntry
	idle    time.Duration
	now     func() time.Time
}

// NewTableSessions keeps tables until they sit unused for idle
func NewTableSessions(idle time.Duration) *TableSessions {
	return &TableSessions{
		entries: make(map[sessionKey]*sessionEntry),
		idle:    idle,
		now:     time.Now,
	}
}

// Table returns the table of session on ledger, creating it on first use
func (s *TableSessions) Table(session, ledger string) *pipeline.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{session: session, ledger: ledger}
	e, ok := s.entries[key]
	if !ok {
		e = &sessionEntry{table: pipeline.NewTable()}
		s.entries[key] = e
	}
	e.lastSeen = s.now()
	return e.table
}

// Sweep drops idle tables and returns how many were removed
func (s *TableSessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idle)
	removed := 0
	for key, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("idle table sessions swept", "removed", removed, "remaining", len(s.entries))
	}
	return removed
}

// Len is the number of live tables
func (s *TableSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
