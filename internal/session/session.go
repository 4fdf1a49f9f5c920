// Package session owns the interval store for the duration of one command:
// it loads the activities file, applies instructions and writes the result
// back when something changed.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"

	"github.com/Tiliavir/stt/internal/instruction"
	"github.com/Tiliavir/stt/internal/logging"
	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/storage"
	"github.com/Tiliavir/stt/internal/store"
)

var (
	// ErrNothingRunning is returned when fin or stop finds no open interval.
	ErrNothingRunning = errors.New("no activity is running")
	// ErrEmptyLog is returned when resume has nothing to resume.
	ErrEmptyLog = errors.New("no activity recorded yet")
)

// Session is a loaded activities file.
type Session struct {
	path   string
	store  *store.Store
	clock  clockwork.Clock
	log    *slog.Logger
	backup storage.BackupPolicy
	dirty  bool
}

type Option func(s *Session)

func WithClock(c clockwork.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

func WithBackup(p storage.BackupPolicy) Option {
	return func(s *Session) {
		s.backup = p
	}
}

// Open loads the activities file at path. Lines that cannot be read are
// logged and left out; they disappear from the file on the next Flush.
func Open(path string, opts ...Option) (*Session, error) {
	s := &Session{
		path:  path,
		clock: clockwork.NewRealClock(),
		log:   logging.Discard(),
	}
	for _, apply := range opts {
		apply(s)
	}

	items, err := storage.Load(path)
	if err != nil {
		var skipped *multierror.Error
		if !errors.As(err, &skipped) {
			return nil, err
		}
		for _, e := range skipped.Errors {
			s.log.Warn("skipping unreadable line", "file", path, "err", e)
		}
	}

	s.store = store.New(items)
	s.log.Debug("activities loaded", "file", path, "count", s.store.Len())
	return s, nil
}

// Path returns the activities file backing the session.
func (s *Session) Path() string {
	return s.path
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// Store exposes the read views. Mutate through the session so changes are
// flushed.
func (s *Session) Store() *store.Store {
	return s.store
}

// Execute applies a parsed instruction and returns the interval it recorded.
func (s *Session) Execute(ins instruction.Instruction) (model.Interval, error) {
	now := s.Now()
	at := ins.When.Resolve(now)

	switch ins.Kind {
	case instruction.Start:
		iv, err := ins.Interval(now)
		if err != nil {
			return model.Interval{}, err
		}
		s.Insert(iv)
		return iv, nil

	case instruction.Fin:
		latest, ok := s.store.Latest()
		if !ok || !latest.End.IsOpen() {
			return model.Interval{}, ErrNothingRunning
		}
		return s.Stop(latest, at)

	case instruction.Resume:
		latest, ok := s.store.Latest()
		if !ok {
			return model.Interval{}, ErrEmptyLog
		}
		return s.Continue(latest, at), nil
	}
	return model.Interval{}, fmt.Errorf("unknown instruction %s", ins.Kind)
}

// Stop closes the open interval target at the given time.
func (s *Session) Stop(target model.Interval, at time.Time) (model.Interval, error) {
	if !target.End.IsOpen() {
		return model.Interval{}, fmt.Errorf("%w: %s already ended", ErrNothingRunning, target.Headline())
	}
	stopped, err := target.Until(at)
	if err != nil {
		return model.Interval{}, err
	}
	if err := s.Delete(target); err != nil {
		return model.Interval{}, err
	}
	s.Insert(stopped)
	return stopped, nil
}

// Continue starts a new open interval with target's activity.
func (s *Session) Continue(target model.Interval, at time.Time) model.Interval {
	iv := model.StartingAt(at, target.Activity)
	s.Insert(iv)
	return iv
}

// Insert records iv, resolving overlaps in the store.
func (s *Session) Insert(iv model.Interval) {
	s.log.Debug("insert", "interval", iv)
	s.store.Insert(iv)
	s.dirty = true
}

// Delete removes target, closing the gap it leaves where possible.
func (s *Session) Delete(target model.Interval) error {
	if err := s.store.Delete(target); err != nil {
		return err
	}
	s.log.Debug("delete", "interval", target)
	s.dirty = true
	return nil
}

// Contains reports whether iv is already recorded.
func (s *Session) Contains(iv model.Interval) bool {
	return s.store.Contains(iv)
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Flush writes the store back if it changed. A due backup of the previous
// file is taken first; a failed backup is logged and does not block the save.
func (s *Session) Flush() error {
	if !s.dirty {
		return nil
	}

	created, err := storage.Backup(s.path, s.backup, s.Now())
	if err != nil {
		s.log.Warn("backup failed", "file", s.path, "err", err)
	} else if created != "" {
		s.log.Info("backup created", "path", created)
	}

	if err := storage.Save(s.path, s.store.Items()); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
