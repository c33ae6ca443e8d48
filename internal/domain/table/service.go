// internal/domain/table/service.go
package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
)

// Options tune the table rules
type Options struct {
	MaxTable int
	TTL      time.Duration
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxTable <= 0 {
		o.MaxTable = DefaultMaxTable
	}
	if o.TTL <= 0 {
		o.TTL = DefaultSessionTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Store keeps the table session of one visitor
type Store struct {
	kv      storage.KV
	opts    Options
	log     logrus.FieldLogger
	current *Session
}

// NewStore creates a table store over the visitor's storage
func NewStore(kv storage.KV, opts Options, log logrus.FieldLogger) *Store {
	return &Store{
		kv:   kv,
		opts: opts.withDefaults(),
		log:  log,
	}
}

// Load reads the persisted session. Missing, malformed or expired data
// leaves the store without a session; expired data is removed.
func (s *Store) Load(ctx context.Context) *Session {
	s.current = nil

	var sess Session
	err := storage.GetJSON(ctx, s.kv, storage.KeyTable, &sess)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		s.log.WithError(err).Warn("Discarding unreadable table session")
		return nil
	}

	if !ValidNumber(sess.Number, s.opts.MaxTable) || sess.AcquiredAt.IsZero() {
		s.log.WithField("table", sess.Number).Warn("Discarding invalid table session")
		return nil
	}

	if sess.ExpiredAt(s.opts.Now(), s.opts.TTL) {
		s.log.WithFields(logrus.Fields{
			"table":       sess.Number,
			"acquired_at": sess.AcquiredAt,
		}).Info("Table session expired")
		if err := s.kv.Del(ctx, storage.KeyTable); err != nil {
			s.log.WithError(err).Warn("Failed to remove expired table session")
		}
		return nil
	}

	s.current = &sess
	return s.Current()
}

// Current returns a copy of the active session, or nil
func (s *Store) Current() *Session {
	if s.current == nil {
		return nil
	}
	sess := *s.current
	return &sess
}

// SetTable starts a fresh session for table n, replacing any previous one
func (s *Store) SetTable(ctx context.Context, n int) (*Session, error) {
	if !ValidNumber(n, s.opts.MaxTable) {
		s.log.WithField("table", n).Warn("Rejected table number")
		return nil, fmt.Errorf("%w: %d", ErrInvalidTableNumber, n)
	}

	sess := Session{Number: n, AcquiredAt: s.opts.Now().UTC()}
	if err := storage.SetJSON(ctx, s.kv, storage.KeyTable, sess); err != nil {
		return nil, fmt.Errorf("failed to save table session: %w", err)
	}

	s.current = &sess
	s.log.WithField("table", n).Info("Table session acquired")
	return s.Current(), nil
}

// ClearTable removes the session
func (s *Store) ClearTable(ctx context.Context) error {
	if err := s.kv.Del(ctx, storage.KeyTable); err != nil {
		return fmt.Errorf("failed to clear table session: %w", err)
	}
	s.current = nil
	return nil
}
