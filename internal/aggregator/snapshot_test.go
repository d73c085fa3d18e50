package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"askcents/internal/core"
)

type fakeSource struct {
	accounts    []core.Account
	txs         []core.Transaction
	accErr      error
	txErr       error
	delay       time.Duration
	canceled    atomic.Bool
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSource) enter() func() {
	n := f.inFlight.Add(1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(f.delay)
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeSource) Accounts(ctx context.Context) ([]core.Account, error) {
	defer f.enter()()
	return f.accounts, f.accErr
}

func (f *fakeSource) Transactions(ctx context.Context) ([]core.Transaction, error) {
	defer f.enter()()
	if ctx.Err() != nil {
		f.canceled.Store(true)
	}
	return f.txs, f.txErr
}

func TestFetchSnapshot_Concurrent(t *testing.T) {
	src := &fakeSource{
		accounts: []core.Account{{ID: "a"}},
		txs:      []core.Transaction{{ID: "t"}},
		delay:    50 * time.Millisecond,
	}
	snap := FetchSnapshot(context.Background(), src)
	if len(snap.Accounts) != 1 || len(snap.Transactions) != 1 || len(snap.Warnings) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if src.maxInFlight.Load() != 2 {
		t.Errorf("fetches did not overlap: max in flight %d", src.maxInFlight.Load())
	}
}

func TestFetchSnapshot_PartialFailure(t *testing.T) {
	src := &fakeSource{
		accounts: []core.Account{{ID: "a"}},
		txs:      []core.Transaction{{ID: "t"}},
		txErr:    errors.New("timeout"),
	}
	snap := FetchSnapshot(context.Background(), src)
	if len(snap.Accounts) != 1 {
		t.Errorf("accounts = %+v", snap.Accounts)
	}
	if snap.Transactions != nil {
		t.Errorf("transactions should be dropped on error: %+v", snap.Transactions)
	}
	if len(snap.Warnings) != 1 || snap.Warnings[0] != "transactions: timeout" {
		t.Errorf("warnings = %v", snap.Warnings)
	}
}

func TestFetchSnapshot_FailureDoesNotCancelSibling(t *testing.T) {
	src := &fakeSource{
		txs:    []core.Transaction{{ID: "t"}},
		accErr: errors.New("bad gateway"),
		delay:  20 * time.Millisecond,
	}
	snap := FetchSnapshot(context.Background(), src)
	if src.canceled.Load() {
		t.Fatal("transaction fetch saw a canceled context")
	}
	if len(snap.Transactions) != 1 {
		t.Errorf("transactions = %+v", snap.Transactions)
	}
	if len(snap.Warnings) != 1 || snap.Warnings[0] != "accounts: bad gateway" {
		t.Errorf("warnings = %v", snap.Warnings)
	}
}
