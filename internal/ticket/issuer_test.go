package ticket

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotoemploi/loto-backend/internal/repository"
)

// fakeCounter implements CounterStore with in-memory compare-and-swap
// semantics, mirroring the conditional UPDATE of the real repository.
type fakeCounter struct {
	mu   sync.Mutex
	code string

	failAdvanceAfter int // fail every AdvanceTo once this many succeeded; 0 disables
	advanced         int
}

func (f *fakeCounter) ReadLast(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.code == "" {
		f.code = "A000"
	}
	return f.code, nil
}

func (f *fakeCounter) AdvanceTo(ctx context.Context, oldCode, newCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdvanceAfter > 0 && f.advanced >= f.failAdvanceAfter {
		return errors.New("store unavailable")
	}
	if f.code != oldCode {
		return repository.ErrConflict
	}
	f.code = newCode
	f.advanced++
	return nil
}

func TestIssueMintsDistinctSequentialCodes(t *testing.T) {
	iss := &Issuer{Counter: &fakeCounter{code: "A000"}}

	codes, err := iss.Issue(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A001", "A002", "A003", "A004", "A005"}, codes)
}

func TestIssueRejectsNonPositiveCount(t *testing.T) {
	iss := &Issuer{Counter: &fakeCounter{}}
	for _, n := range []int{0, -3} {
		codes, err := iss.Issue(context.Background(), n)
		assert.Error(t, err)
		assert.Empty(t, codes)
	}
}

// Two issuance calls racing over the same counter must never mint the
// same code: the CAS loser re-reads and extends from the winner's value.
func TestIssueConcurrentCallersNeverCollide(t *testing.T) {
	counter := &fakeCounter{code: "A000"}
	iss := &Issuer{Counter: counter}

	const callers = 8
	const perCaller = 25
	results := make([][]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = iss.Issue(context.Background(), perCaller)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "caller %d", i)
	}

	seen := map[string]bool{}
	for _, codes := range results {
		require.Len(t, codes, perCaller)
		for _, c := range codes {
			assert.False(t, seen[c], "code %s issued to two callers", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, callers*perCaller)
	assert.Equal(t, callers*perCaller, counter.advanced)
}

// A store failure mid-batch must surface the shortfall: the issuer
// returns the codes it minted plus an error, never a silent short batch.
func TestIssueReportsPartialFailure(t *testing.T) {
	counter := &fakeCounter{code: "A000", failAdvanceAfter: 2}
	iss := &Issuer{Counter: counter}

	codes, err := iss.Issue(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, []string{"A001", "A002"}, codes)
	assert.Contains(t, err.Error(), "minted 2 of 5")
}

// errLock always fails to acquire; issuance must proceed on CAS alone.
type errLock struct{}

func (errLock) Acquire(ctx context.Context) (func(), error) {
	return nil, errors.New("redis down")
}

func TestIssueSurvivesLockFailure(t *testing.T) {
	iss := &Issuer{Counter: &fakeCounter{code: "B010"}, Lock: errLock{}}

	codes, err := iss.Issue(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B011", "B012"}, codes)
}
