// Package settings owns the persisted configuration blob: in-memory state
// is authoritative, writes are coalesced through a debounce timer unless a
// caller forces an immediate save.
package settings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/kv"
	"github.com/miqat-dev/miqat/internal/model"
)

const settingsKey = "settings"

const (
	defaultDebounce   = 500 * time.Millisecond
	defaultRetryDelay = 250 * time.Millisecond
)

// Store holds the current Settings and persists them to the key-value
// store under a single fixed key.
type Store struct {
	kv kv.Store

	mu       sync.Mutex
	current  model.Settings
	debounce *time.Timer
	dirty    bool
	closed   bool

	debounceDur time.Duration
	retryDelay  time.Duration
}

// NewStore loads the persisted blob synchronously. A missing key yields
// defaults; a corrupt blob is discarded, replaced by defaults and
// immediately re-persisted so the store self-heals instead of failing the
// caller.
func NewStore(ctx context.Context, store kv.Store) *Store {
	s := &Store{
		kv:          store,
		debounceDur: defaultDebounce,
		retryDelay:  defaultRetryDelay,
	}
	s.current = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) model.Settings {
	raw, err := s.kv.Get(ctx, settingsKey)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Error().Err(err).Msg("settings read failed, using defaults")
		}
		return model.DefaultSettings()
	}

	var loaded model.Settings
	if err := json.Unmarshal(raw, &loaded); err != nil {
		log.Warn().Err(err).Msg("corrupt settings blob, resetting to defaults")
		defaults := model.DefaultSettings()
		if err := s.persist(ctx, defaults); err != nil {
			log.Error().Err(err).Msg("failed to re-persist default settings")
		}
		return defaults
	}
	loaded.Normalize()
	return loaded
}

// Current returns a copy of the in-memory settings.
func (s *Store) Current() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update applies mutate to the settings. With force the write completes
// before Update returns; otherwise it is scheduled behind the debounce
// window, superseding any pending timer.
func (s *Store) Update(ctx context.Context, mutate func(*model.Settings), force bool) error {
	s.mu.Lock()
	mutate(&s.current)
	s.current.Normalize()

	if !force {
		s.dirty = true
		s.armDebounceLocked()
		s.mu.Unlock()
		return nil
	}

	snapshot := s.current.Clone()
	s.dirty = false
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// SetPermissionStatus records the device's notification-permission state
// as reported on the permission stream. Always a forced save: the status
// must survive a restart, and it never affects prayer timing.
func (s *Store) SetPermissionStatus(ctx context.Context, status model.PermissionStatus) {
	if err := s.Update(ctx, func(set *model.Settings) {
		set.PermissionStatus = status
	}, true); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("failed to persist permission status")
	}
}

func (s *Store) armDebounceLocked() {
	if s.closed {
		return
	}
	if s.debounce != nil {
		// supersede, don't accumulate
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.debounceDur, s.flushDebounced)
}

func (s *Store) flushDebounced() {
	s.mu.Lock()
	if !s.dirty || s.closed {
		s.mu.Unlock()
		return
	}
	snapshot := s.current.Clone()
	s.dirty = false
	s.mu.Unlock()

	if err := s.persist(context.Background(), snapshot); err != nil {
		log.Error().Err(err).Msg("debounced settings write failed; in-memory state remains authoritative")
	}
}

// persist writes the blob, retrying exactly once after a short delay.
func (s *Store) persist(ctx context.Context, snapshot model.Settings) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	err = s.kv.Set(ctx, settingsKey, raw, 0)
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Msg("settings write failed, retrying once")

	time.Sleep(s.retryDelay)
	if err := s.kv.Set(ctx, settingsKey, raw, 0); err != nil {
		log.Error().Err(err).Msg("settings write failed twice")
		return err
	}
	return nil
}

// Close flushes a pending debounced write and stops the timer. The store
// must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	pending := s.dirty
	snapshot := s.current.Clone()
	s.dirty = false
	s.mu.Unlock()

	if pending {
		if err := s.persist(context.Background(), snapshot); err != nil {
			log.Error().Err(err).Msg("final settings flush failed")
		}
	}
}
