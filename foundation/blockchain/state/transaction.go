package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SubmitTransaction creates a transaction signed by this node and adds it to
// the pool. It reports whether the pool reached the mining trigger, in which
// case the worker is signaled to mine. The caller is never blocked on
// mining.
func (s *State) SubmitTransaction(fromID database.AccountID, toID database.AccountID, amount int64) (database.Transaction, bool, error) {
	tx, full, err := s.submit(fromID, toID, amount)
	if err != nil {
		return database.Transaction{}, false, err
	}

	if full && s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return tx, full, nil
}

// CreateTransaction creates a transaction signed by this node and adds it to
// the pool. When the pool reaches the mining trigger the pending
// transactions are mined before returning, unless a concurrent caller mined
// the batch first.
func (s *State) CreateTransaction(ctx context.Context, fromID database.AccountID, toID database.AccountID, amount int64) (database.Transaction, error) {
	tx, full, err := s.submit(fromID, toID, amount)
	if err != nil {
		return database.Transaction{}, err
	}

	if !full {
		return tx, nil
	}

	s.evHandler("state: CreateTransaction: pool full: mining")

	if _, err := s.minePending(ctx, true); err != nil && !errors.Is(err, ErrNoTransactions) {
		return tx, fmt.Errorf("mining pending transactions: %w", err)
	}

	return tx, nil
}

// =============================================================================

// submit builds the transaction and appends it to the pool as one unit so
// two callers can't both see the pool reach the trigger.
func (s *State) submit(fromID database.AccountID, toID database.AccountID, amount int64) (database.Transaction, bool, error) {
	tx, err := database.NewTransaction(s.keyStore, s.nodeID, fromID, toID, amount)
	if err != nil {
		return database.Transaction{}, false, err
	}

	s.mu.Lock()
	n, err := s.mempool.Add(tx)
	s.mu.Unlock()

	if err != nil {
		return database.Transaction{}, false, err
	}

	s.evHandler("viewer: newTx: tx[%s]: pool[%d]", tx, n)

	return tx, n >= int(s.genesis.TransPerBlock), nil
}
