package ticket

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lotoemploi/loto-backend/internal/repository"
)

// CounterStore is the persistence contract the issuer needs: read the
// last issued code and advance it with compare-and-swap semantics.
// repository.CounterRepo is the production implementation.
type CounterStore interface {
	ReadLast(ctx context.Context) (string, error)
	AdvanceTo(ctx context.Context, oldCode, newCode string) error
}

// Locker optionally serializes a whole batch across process instances.
// Acquire blocks until the lock is held and returns a release func.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// maxConflictRetries bounds how many times a single code allocation may
// lose the counter race before issuance gives up. Losing is expected
// under concurrency; losing this often means the store is misbehaving.
const maxConflictRetries = 50

// Issuer mints ticket codes one at a time through the counter store.
// Each code is an independent atomic step; there is no batch
// transaction, so a store failure mid-batch yields a partial result.
type Issuer struct {
	Counter CounterStore
	Lock    Locker // optional; nil means CAS-only serialization
}

// Issue allocates n distinct sequential ticket codes. On failure it
// returns the codes successfully minted so far together with the error;
// the caller must treat a short result as a data-integrity condition,
// never as a smaller successful order.
func (i *Issuer) Issue(ctx context.Context, n int) ([]string, error) {
	codes := make([]string, 0, n)
	if n <= 0 {
		return codes, fmt.Errorf("issue: ticket count must be positive, got %d", n)
	}

	if i.Lock != nil {
		release, err := i.Lock.Acquire(ctx)
		if err != nil {
			// The CAS on the counter still guarantees uniqueness; the
			// lock only reduces contention across instances.
			log.Printf("ticket: issuance lock unavailable, falling back to CAS only: %v", err)
		} else {
			defer release()
		}
	}

	for len(codes) < n {
		code, err := i.allocateOne(ctx)
		if err != nil {
			return codes, fmt.Errorf("issue: minted %d of %d codes: %w", len(codes), n, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// allocateOne performs a single read -> successor -> compare-and-swap
// cycle, retrying on conflict with a fresh snapshot each time.
func (i *Issuer) allocateOne(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		last, err := i.Counter.ReadLast(ctx)
		if err != nil {
			return "", fmt.Errorf("read counter: %w", err)
		}
		next, err := NextCode(last)
		if err != nil {
			return "", fmt.Errorf("advance code %q: %w", last, err)
		}
		if last == "Z999" {
			// The sequence restarts at A000 here and begins reusing
			// codes issued a full cycle earlier.
			log.Printf("ticket: ALERT counter wrapped from Z999 to A000; code reuse begins now")
		}
		err = i.Counter.AdvanceTo(ctx, last, next)
		if errors.Is(err, repository.ErrConflict) {
			continue // someone else took this code; re-read and retry
		}
		if err != nil {
			return "", fmt.Errorf("persist counter %q: %w", next, err)
		}
		return next, nil
	}
	return "", fmt.Errorf("gave up after %d counter conflicts", maxConflictRetries)
}
