package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const snapshotTTL = 7 * 24 * time.Hour

// snapshot is the subset of session state worth surviving a restart. The
// registration draft and lock are deliberately excluded: a restart aborts an
// in-flight wizard rather than resuming it against stale prompts.
type snapshot struct {
	ActiveProfileID    string `json:"active_profile_id"`
	SwitchPanelVisible bool   `json:"switch_panel_visible"`
}

type entry struct {
	mu sync.Mutex
	s  *Session
}

// Store owns all sessions for the process, keyed by chat session key.
// Sessions are created on first use. Handlers for the same session are
// serialized through a per-session mutex because lock checks and draft
// mutations are multi-step; handlers for different sessions run concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	kv      KVStore // nil disables snapshotting
	logger  *zap.Logger
}

// NewStore constructs a session store. kv may be nil, in which case sessions
// live only in process memory.
func NewStore(kv KVStore, logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		kv:      kv,
		logger:  logger,
	}
}

func (st *Store) entryFor(key string) (*entry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[key]
	if !ok {
		e = &entry{s: &Session{Key: key}}
		st.entries[key] = e
	}
	return e, !ok
}

// With runs fn while holding the session's lock, creating (and, when a
// snapshot store is configured, restoring) the session on first use. The
// session must not be retained outside fn. After fn returns, the persistent
// subset of state is snapshotted; snapshot failures are logged, not returned,
// since in-memory state is already consistent.
func (st *Store) With(ctx context.Context, key string, fn func(s *Session) error) error {
	e, created := st.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	if created && st.kv != nil {
		st.restore(ctx, e.s)
	}

	err := fn(e.s)

	if st.kv != nil {
		if snapErr := st.save(ctx, e.s); snapErr != nil {
			st.logger.Warn("session snapshot failed",
				zap.String("session_key", key),
				zap.Error(snapErr),
			)
		}
	}
	return err
}

func snapshotKey(sessionKey string) string {
	return fmt.Sprintf("session:%s:state", sessionKey)
}

func (st *Store) restore(ctx context.Context, s *Session) {
	raw, err := st.kv.Get(ctx, snapshotKey(s.Key))
	if err != nil {
		if !errors.Is(err, ErrKeyMiss) {
			st.logger.Warn("session restore failed",
				zap.String("session_key", s.Key),
				zap.Error(err),
			)
		}
		return
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		st.logger.Warn("session snapshot corrupt, starting fresh",
			zap.String("session_key", s.Key),
			zap.Error(err),
		)
		return
	}
	s.ActiveProfileID = snap.ActiveProfileID
	s.SwitchPanelVisible = snap.SwitchPanelVisible
}

func (st *Store) save(ctx context.Context, s *Session) error {
	snap := snapshot{
		ActiveProfileID:    s.ActiveProfileID,
		SwitchPanelVisible: s.SwitchPanelVisible,
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return st.kv.Set(ctx, snapshotKey(s.Key), string(raw), snapshotTTL)
}
