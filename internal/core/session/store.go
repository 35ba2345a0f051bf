// Package session holds the per-user working state between uploads and
// statement generation: the file-sourced transaction collection, the manually
// entered collection, the statement configuration and the logo bytes. It
// replaces ambient mutable globals with an explicit store; pipeline stages
// only ever see immutable snapshots.
package session

import (
	"sync"

	"statement-service/internal/domain"
)

// Session is one user's working set. All access goes through the mutex; the
// accessors hand out copies so callers can never mutate the canonical
// collections.
type Session struct {
	mu        sync.Mutex
	genMu     sync.Mutex
	fileTxs   []domain.Transaction
	manualTxs []domain.Transaction
	config    domain.StatementConfig
	logo      []byte
}

// Store maps owner ids to sessions, creating them on first use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session for an owner, creating it if needed.
func (s *Store) Get(ownerID string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[ownerID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[ownerID]; ok {
		return sess
	}
	sess = &Session{}
	s.sessions[ownerID] = sess
	return sess
}

// SetFileTransactions replaces the file-sourced collection; a new upload
// always supersedes the previous one.
func (s *Session) SetFileTransactions(txs []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileTxs = copyTxs(txs)
}

// ClearFileTransactions drops the file-sourced collection en masse. File
// transactions are never deleted individually.
func (s *Session) ClearFileTransactions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileTxs = nil
}

// AddManual appends a manually entered transaction.
func (s *Session) AddManual(tx domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualTxs = append(s.manualTxs, tx)
}

// DeleteManual removes one manual transaction by id, reporting whether it
// existed.
func (s *Session) DeleteManual(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.manualTxs {
		if tx.ID == id {
			s.manualTxs = append(s.manualTxs[:i], s.manualTxs[i+1:]...)
			return true
		}
	}
	return false
}

// SetConfig stores the statement configuration for this session.
func (s *Session) SetConfig(cfg domain.StatementConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// SetLogo stores the raw logo image bytes.
func (s *Session) SetLogo(logo []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logo = append([]byte(nil), logo...)
}

// Snapshot returns immutable copies of everything a statement build needs.
func (s *Session) Snapshot() (fileTxs, manualTxs []domain.Transaction, cfg domain.StatementConfig, logo []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTxs(s.fileTxs), copyTxs(s.manualTxs), s.config, append([]byte(nil), s.logo...)
}

// SerializeGeneration runs fn while holding the session's generation lock, so
// a double-submitted generate request runs one pipeline at a time.
func (s *Session) SerializeGeneration(fn func() error) error {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return fn()
}

func copyTxs(txs []domain.Transaction) []domain.Transaction {
	if txs == nil {
		return nil
	}
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	return out
}
