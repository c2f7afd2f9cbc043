package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/pkg/goerror"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
)

func issue(id int64, code int) entity.IssuedOTP {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return entity.IssuedOTP{ID: id, Code: code, IssuedAt: now, ExpiresAt: now.Add(time.Minute)}
}

func TestStore_AppendAndGet(t *testing.T) {
	s := New(instrument.NewNoop(), 0)
	ctx := context.Background()

	if _, err := s.Get(ctx, "a@dso.org.sg"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	for i := 1; i <= 3; i++ {
		rec, err := s.Append(ctx, "a@dso.org.sg", issue(int64(i), 100000+i))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if len(rec.History) != i {
			t.Fatalf("len(History) = %d, want %d", len(rec.History), i)
		}
	}

	rec, err := s.Get(ctx, "a@dso.org.sg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	latest, _ := rec.Latest()
	if latest.Code != 100003 {
		t.Fatalf("latest code = %d, want 100003", latest.Code)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	rec.History[0].Code = 0
	again, _ := s.Get(ctx, "a@dso.org.sg")
	if again.History[0].Code != 100001 {
		t.Fatal("Get() returned shared history")
	}
}

func TestStore_HistoryLimit(t *testing.T) {
	s := New(instrument.NewNoop(), 2)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if _, err := s.Append(ctx, "a@dso.org.sg", issue(int64(i), 100000+i)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	rec, _ := s.Get(ctx, "a@dso.org.sg")
	if len(rec.History) != 2 || rec.History[0].Code != 100004 || rec.History[1].Code != 100005 {
		t.Fatalf("History = %+v, want the two newest", rec.History)
	}
}

func TestStore_Update(t *testing.T) {
	s := New(instrument.NewNoop(), 0)
	ctx := context.Background()

	err := s.Update(ctx, "missing@dso.org.sg", func(*entity.IdentityRecord) error { return nil })
	if !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}

	if _, err := s.Append(ctx, "a@dso.org.sg", issue(1, 123456)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	errStop := errors.New("stop")
	err = s.Update(ctx, "a@dso.org.sg", func(rec *entity.IdentityRecord) error {
		rec.AttemptCount = 4
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Update() error = %v, want errStop", err)
	}

	rec, _ := s.Get(ctx, "a@dso.org.sg")
	if rec.AttemptCount != 4 {
		t.Fatalf("AttemptCount = %d, want 4", rec.AttemptCount)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.Update(canceled, "a@dso.org.sg", func(*entity.IdentityRecord) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("Update() error = %v, want context.Canceled", err)
	}
}

func TestStore_ConcurrentSameIdentity(t *testing.T) {
	s := New(instrument.NewNoop(), 0)
	ctx := context.Background()

	if _, err := s.Append(ctx, "a@dso.org.sg", issue(1, 123456)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	const workers, perWorker = 16, 100
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				_ = s.Update(ctx, "a@dso.org.sg", func(rec *entity.IdentityRecord) error {
					rec.Verify(0, 1<<30, time.Now())
					return nil
				})
			}
		})
	}
	wg.Wait()

	rec, _ := s.Get(ctx, "a@dso.org.sg")
	if rec.AttemptCount != workers*perWorker {
		t.Fatalf("AttemptCount = %d, want %d (lost updates)", rec.AttemptCount, workers*perWorker)
	}
}

func TestStore_ConcurrentCreate(t *testing.T) {
	s := New(instrument.NewNoop(), 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			email := fmt.Sprintf("u%d@dso.org.sg", i%10)
			_, _ = s.Append(ctx, email, issue(int64(i), 100000+i))
		})
	}
	wg.Wait()

	if s.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", s.Len())
	}

	total := 0
	for i := range 10 {
		rec, err := s.Get(ctx, fmt.Sprintf("u%d@dso.org.sg", i))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		total += len(rec.History)
	}
	if total != 50 {
		t.Fatalf("total history = %d, want 50", total)
	}
}
