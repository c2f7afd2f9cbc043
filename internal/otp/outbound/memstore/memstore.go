// Package memstore keeps identity records in process memory.
//
// Each record has its own mutex; the map lock is only held to find or create
// an entry, so work on different identities never contends.
package memstore

import (
	"context"
	"sync"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/pkg/goerror"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"
)

type entry struct {
	mu  sync.Mutex
	rec entity.IdentityRecord
}

// Store is an in-memory identity record store.
type Store struct {
	ins          instrument.Instrumentation
	historyLimit int

	mu      sync.RWMutex
	entries map[string]*entry
	size    *atomic.Int64
}

// New builds a Store. historyLimit > 0 keeps only the newest historyLimit
// issued codes per identity; 0 keeps all of them.
func New(ins instrument.Instrumentation, historyLimit int) *Store {
	if historyLimit < 0 {
		historyLimit = 0
	}
	return &Store{
		ins:          ins,
		historyLimit: historyLimit,
		entries:      make(map[string]*entry),
		size:         atomic.NewInt64(0),
	}
}

// Append records issued as the newest code for email, creating the record on
// first use, and returns a copy of the committed record.
//
// The commit happens after the code was delivered, so it deliberately ignores
// ctx cancellation.
func (s *Store) Append(ctx context.Context, email string, issued entity.IssuedOTP) (*entity.IdentityRecord, error) {
	_, span := s.ins.Tracer("otp.outbound.memstore").Start(ctx, "Append")
	defer span.End()

	e := s.getOrCreate(email)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rec.History = append(e.rec.History, issued)
	if s.historyLimit > 0 && len(e.rec.History) > s.historyLimit {
		drop := len(e.rec.History) - s.historyLimit
		e.rec.History = append(e.rec.History[:0:0], e.rec.History[drop:]...)
	}

	span.SetAttributes(attribute.Int("otp.history_len", len(e.rec.History)))
	return e.rec.Clone(), nil
}

// Update runs fn with exclusive access to the record of email.
// It returns goerror.ErrNotFound when no record exists.
func (s *Store) Update(ctx context.Context, email string, fn func(rec *entity.IdentityRecord) error) error {
	ctx, span := s.ins.Tracer("otp.outbound.memstore").Start(ctx, "Update")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	e := s.lookup(email)
	if e == nil {
		return goerror.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(&e.rec)
}

// Get returns a copy of the record of email or goerror.ErrNotFound.
func (s *Store) Get(ctx context.Context, email string) (*entity.IdentityRecord, error) {
	_, span := s.ins.Tracer("otp.outbound.memstore").Start(ctx, "Get")
	defer span.End()

	e := s.lookup(email)
	if e == nil {
		return nil, goerror.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.rec.Clone(), nil
}

// Len returns the number of identities with a record.
func (s *Store) Len() int64 {
	return s.size.Load()
}

func (s *Store) lookup(email string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[email]
}

func (s *Store) getOrCreate(email string) *entry {
	if e := s.lookup(email); e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[email]; ok {
		return e
	}

	e := &entry{rec: entity.IdentityRecord{Email: email}}
	s.entries[email] = e
	s.size.Inc()
	return e
}
