package aggregator

import (
	"context"
	"log/slog"

	"askcents/internal/core"

	"golang.org/x/sync/errgroup"
)

// Source provides the two input lists of an analysis pass.
type Source interface {
	Accounts(ctx context.Context) ([]core.Account, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
}

// Snapshot is one coherent pair of inputs.
type Snapshot struct {
	Accounts     []core.Account
	Transactions []core.Transaction
	// Warnings lists fetches that failed and were replaced by an empty list.
	Warnings []string
}

// FetchSnapshot fetches accounts and transactions concurrently and returns
// once both have resolved. A failed fetch yields an empty list and a
// warning, so the caller falls back to sample data instead of failing.
func FetchSnapshot(ctx context.Context, src Source) Snapshot {
	var (
		snap          Snapshot
		accErr, txErr error
		accounts      []core.Account
		transactions  []core.Transaction
	)

	// Per-fetch errors are captured rather than returned: a failed account
	// fetch must not cancel the transaction fetch, and vice versa.
	var g errgroup.Group
	g.Go(func() error {
		accounts, accErr = src.Accounts(ctx)
		return nil
	})
	g.Go(func() error {
		transactions, txErr = src.Transactions(ctx)
		return nil
	})
	_ = g.Wait() // always nil

	if accErr != nil {
		slog.WarnContext(ctx, "Account fetch failed, using empty list", "component", "aggregator", "error", accErr)
		snap.Warnings = append(snap.Warnings, "accounts: "+accErr.Error())
		accounts = nil
	}
	if txErr != nil {
		slog.WarnContext(ctx, "Transaction fetch failed, using empty list", "component", "aggregator", "error", txErr)
		snap.Warnings = append(snap.Warnings, "transactions: "+txErr.Error())
		transactions = nil
	}
	snap.Accounts = accounts
	snap.Transactions = transactions
	return snap
}
