// Package mempool maintains the pool of transactions waiting to be mined.
// Transactions leave the pool in the order they arrived.
package mempool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrDuplicate is returned when a transaction is already in the pool.
var ErrDuplicate = errors.New("transaction already in pool")

// Mempool represents an ordered cache of transactions with a second key on
// the transaction id.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Transaction
	ids  map[string]struct{}
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		ids: make(map[string]struct{}),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the new size
// of the pool.
func (mp *Mempool) Add(tx database.Transaction) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.ids[tx.ID]; exists {
		return len(mp.pool), fmt.Errorf("%w: %s", ErrDuplicate, tx.ID)
	}

	mp.pool = append(mp.pool, tx)
	mp.ids[tx.ID] = struct{}{}

	return len(mp.pool), nil
}

// Delete removes a transaction from the pool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.ids[id]; !exists {
		return
	}

	for i, tx := range mp.pool {
		if tx.ID == id {
			mp.pool = append(mp.pool[:i], mp.pool[i+1:]...)
			break
		}
	}
	delete(mp.ids, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
	mp.ids = make(map[string]struct{})
}

// Copy returns a copy of the transactions in pool order.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return append([]database.Transaction(nil), mp.pool...)
}

// Drain removes every transaction from the pool and returns them in pool
// order.
func (mp *Mempool) Drain() []database.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil
	mp.ids = make(map[string]struct{})

	return trans
}

// Restore puts transactions back at the front of the pool, ahead of anything
// that arrived after they were drained. Transactions already in the pool
// are skipped.
func (mp *Mempool) Restore(trans []database.Transaction) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	front := make([]database.Transaction, 0, len(trans)+len(mp.pool))
	for _, tx := range trans {
		if _, exists := mp.ids[tx.ID]; exists {
			continue
		}
		front = append(front, tx)
		mp.ids[tx.ID] = struct{}{}
	}

	mp.pool = append(front, mp.pool...)
}
