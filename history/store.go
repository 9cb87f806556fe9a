package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store owns the current session and the saved sessions.
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	backend Backend
	logger  *zap.SugaredLogger
	now     func() time.Time

	sessions []Session // saved, insertion order
	counter  int       // last allocated session id

	current  *Session
	lastItem int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore loads saved sessions and the counter from backend.
// A nil backend keeps everything in memory.
func NewStore(ctx context.Context, backend Backend, opts ...StoreOption) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}

	s := &Store{
		backend: backend,
		logger:  zap.NewNop().Sugar(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	sessions, counter, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	s.sessions = sessions
	s.counter = counter
	return s, nil
}

// CreateSession saves the current session if it holds items, then starts
// an empty one with the next id. An empty lang uses DefaultLanguage.
func (s *Store) CreateSession(ctx context.Context, lang string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSession(ctx, lang)
}

func (s *Store) createSession(ctx context.Context, lang string) (Session, error) {
	if err := s.save(ctx); err != nil {
		return Session{}, err
	}

	if lang == "" {
		lang = DefaultLanguage
	}

	s.counter++
	if err := s.backend.SaveCounter(ctx, s.counter); err != nil {
		return Session{}, fmt.Errorf("persisting session counter: %w", err)
	}

	s.current = &Session{ID: s.counter, Timestamp: s.now(), Language: lang}
	s.lastItem = 0

	s.logger.Debugw("session created", "session", s.counter, "language", lang)
	return s.current.clone(), nil
}

// Append records a translation at the front of the current session,
// creating a session first when none is active.
func (s *Store) Append(ctx context.Context, source, target, detectedLang string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		if _, err := s.createSession(ctx, ""); err != nil {
			return Item{}, err
		}
	}

	s.lastItem++
	item := Item{
		ID:           s.lastItem,
		Timestamp:    s.now(),
		SourceText:   source,
		TargetText:   target,
		DetectedLang: detectedLang,
	}

	items := append([]Item{item}, s.current.Items...)
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	s.current.Items = items
	return item, nil
}

// Save persists the current session when it holds at least one item.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// Stop ends a listening period; the current session is saved.
func (s *Store) Stop(ctx context.Context) error {
	return s.Save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	if s.current == nil || len(s.current.Items) == 0 {
		return nil
	}

	snapshot := s.current.clone()
	snapshot.Timestamp = s.now()

	if i := s.savedIndex(snapshot.ID); i >= 0 {
		s.sessions[i] = snapshot
	} else {
		s.sessions = append(s.sessions, snapshot)
		if len(s.sessions) > MaxSessions {
			evicted := s.sessions[0]
			s.sessions = append([]Session(nil), s.sessions[1:]...)
			s.logger.Debugw("session evicted", "session", evicted.ID)
		}
	}

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.logger.Debugw("session saved", "session", snapshot.ID, "items", len(snapshot.Items))
	return nil
}

// LoadSession makes a saved session current, saving the previous one first.
func (s *Store) LoadSession(ctx context.Context, id int) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.ID != id {
		if err := s.save(ctx); err != nil {
			return Session{}, err
		}
	}

	i := s.savedIndex(id)
	if i < 0 {
		return Session{}, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}

	loaded := s.sessions[i].clone()
	if loaded.Language == "" {
		loaded.Language = DefaultLanguage
	}
	s.current = &loaded
	s.lastItem = maxItemID(loaded.Items)
	return loaded.clone(), nil
}

// ToggleStar flips the starred flag of an item and returns the updated item.
// Changes to saved sessions are persisted immediately; the current session
// is persisted on its next save.
func (s *Store) ToggleStar(ctx context.Context, itemID, sessionID int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isCurrent(sessionID) {
		i := findItem(s.current.Items, itemID)
		if i < 0 {
			return Item{}, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		s.current.Items[i].Starred = !s.current.Items[i].Starred
		return s.current.Items[i], nil
	}

	si := s.savedIndex(sessionID)
	if si < 0 {
		return Item{}, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	items := s.sessions[si].Items
	i := findItem(items, itemID)
	if i < 0 {
		return Item{}, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	items[i].Starred = !items[i].Starred

	if err := s.persist(ctx); err != nil {
		return Item{}, err
	}
	return items[i], nil
}

// DeleteItem removes an item from the current or a saved session.
func (s *Store) DeleteItem(ctx context.Context, itemID, sessionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isCurrent(sessionID) {
		i := findItem(s.current.Items, itemID)
		if i < 0 {
			return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		s.current.Items = append(s.current.Items[:i:i], s.current.Items[i+1:]...)
		return nil
	}

	si := s.savedIndex(sessionID)
	if si < 0 {
		return fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	items := s.sessions[si].Items
	i := findItem(items, itemID)
	if i < 0 {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	s.sessions[si].Items = append(items[:i:i], items[i+1:]...)
	return s.persist(ctx)
}

// DeleteSession removes a saved session. Deleting the current session also
// clears the in-memory state.
func (s *Store) DeleteSession(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	if i := s.savedIndex(id); i >= 0 {
		s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
		if err := s.persist(ctx); err != nil {
			return err
		}
		found = true
	}

	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.lastItem = 0
		found = true
	}

	if !found {
		return fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	return nil
}

// Clear empties the current session without touching saved sessions.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Items = nil
	}
	s.lastItem = 0
}

// Search matches query case-insensitively against source and translated text
// of the current and all saved sessions, newest first. An empty query lists
// the current session.
func (s *Store) Search(query string) []Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))

	var matches []Match
	collect := func(session Session) {
		for _, item := range session.Items {
			if query == "" || matchesQuery(item, query) {
				matches = append(matches, Match{Item: item, SessionID: session.ID})
			}
		}
	}

	if s.current != nil {
		collect(*s.current)
	}
	if query == "" {
		return matches
	}

	for _, session := range s.sessions {
		if s.current != nil && session.ID == s.current.ID {
			continue
		}
		collect(session)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})
	return matches
}

func matchesQuery(item Item, query string) bool {
	return strings.Contains(strings.ToLower(item.SourceText), query) ||
		strings.Contains(strings.ToLower(item.TargetText), query)
}

// Current returns a copy of the current session, or false when none is active.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Session{}, false
	}
	return s.current.clone(), true
}

// Session returns a copy of a saved session.
func (s *Store) Session(id int) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.savedIndex(id); i >= 0 {
		return s.sessions[i].clone(), nil
	}
	return Session{}, fmt.Errorf("session %d: %w", id, ErrNotFound)
}

// Sessions returns copies of the saved sessions, most recently saved first.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := cloneSessions(s.sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (s *Store) isCurrent(sessionID int) bool {
	return s.current != nil && (sessionID == 0 || sessionID == s.current.ID)
}

func (s *Store) savedIndex(id int) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.backend.SaveSessions(ctx, s.sessions); err != nil {
		return fmt.Errorf("persisting sessions: %w", err)
	}
	return nil
}
