package out

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bactrack/internal/modules/session/domain"
	sessionout "bactrack/internal/modules/session/port/out"
)

// RemoteSyncer pushes session snapshots from a single background worker.
// Snapshots queued for the same session id are coalesced so only the
// latest one is sent. Remote failures are logged and never reach callers.
type RemoteSyncer struct {
	remote  sessionout.RemotePusher
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	pending map[string]domain.Session
	order   []string
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewRemoteSyncer starts the worker. A nil remote yields a syncer that
// drops everything.
func NewRemoteSyncer(remote sessionout.RemotePusher, timeout time.Duration, logger zerolog.Logger) *RemoteSyncer {
	s := &RemoteSyncer{
		remote:  remote,
		timeout: timeout,
		logger:  logger,
		pending: make(map[string]domain.Session),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if remote == nil {
		close(s.done)
		return s
	}
	go s.run()
	return s
}

// Enqueue schedules session for pushing and returns immediately.
func (s *RemoteSyncer) Enqueue(session domain.Session) {
	if s == nil || s.remote == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn().Str("session_id", session.ID).Msg("remote sync skipped after close")
		return
	}
	if _, queued := s.pending[session.ID]; !queued {
		s.order = append(s.order, session.ID)
	}
	s.pending[session.ID] = session.Clone()
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting snapshots and waits for the queue to drain or
// ctx to end, whichever comes first. It is safe to call more than once.
func (s *RemoteSyncer) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		left := len(s.order)
		s.mu.Unlock()
		s.logger.Warn().Int("pending", left).Msg("remote sync abandoned on close")
		return ctx.Err()
	}
}

func (s *RemoteSyncer) run() {
	defer close(s.done)
	for {
		for {
			session, ok := s.next()
			if !ok {
				break
			}
			s.push(session)
		}
		s.mu.Lock()
		finished := s.closed && len(s.order) == 0
		s.mu.Unlock()
		if finished {
			return
		}
		<-s.wake
	}
}

func (s *RemoteSyncer) next() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return domain.Session{}, false
	}
	id := s.order[0]
	s.order = s.order[1:]
	session := s.pending[id]
	delete(s.pending, id)
	return session, true
}

func (s *RemoteSyncer) push(session domain.Session) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.remote.Push(ctx, session); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Str("state", string(session.State)).Msg("remote sync failed")
		return
	}
	s.logger.Debug().Str("session_id", session.ID).Msg("remote sync ok")
}

// SyncingActiveStore saves locally, then hands the session to the syncer.
// Local writes and clears never wait on the remote.
type SyncingActiveStore struct {
	local  sessionout.ActiveSessionStore
	syncer *RemoteSyncer
}

func NewSyncingActiveStore(local sessionout.ActiveSessionStore, syncer *RemoteSyncer) *SyncingActiveStore {
	return &SyncingActiveStore{local: local, syncer: syncer}
}

var _ sessionout.ActiveSessionStore = (*SyncingActiveStore)(nil)

func (s *SyncingActiveStore) SaveActive(ctx context.Context, session domain.Session) error {
	if err := s.local.SaveActive(ctx, session); err != nil {
		return err
	}
	s.syncer.Enqueue(session)
	return nil
}

func (s *SyncingActiveStore) LoadActive(ctx context.Context, profileID string) (domain.Session, error) {
	return s.local.LoadActive(ctx, profileID)
}

func (s *SyncingActiveStore) ClearActive(ctx context.Context, profileID string) error {
	return s.local.ClearActive(ctx, profileID)
}

type SyncingHistoryStore struct {
	local  sessionout.HistoryStore
	syncer *RemoteSyncer
}

func NewSyncingHistoryStore(local sessionout.HistoryStore, syncer *RemoteSyncer) *SyncingHistoryStore {
	return &SyncingHistoryStore{local: local, syncer: syncer}
}

var _ sessionout.HistoryStore = (*SyncingHistoryStore)(nil)

func (s *SyncingHistoryStore) Append(ctx context.Context, session domain.Session) (string, error) {
	path, err := s.local.Append(ctx, session)
	if err != nil {
		return "", err
	}
	s.syncer.Enqueue(session)
	return path, nil
}

func (s *SyncingHistoryStore) List(ctx context.Context) ([]sessionout.ArchivedSession, error) {
	return s.local.List(ctx)
}
