// Package memory implements the ledger storage journal in memory. Nothing
// survives the process.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrNotFound is returned when the block does not exist.
var ErrNotFound = errors.New("block not found")

// Memory keeps the blocks in a slice ordered by index. This implements the
// database.Storage interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close has nothing to release.
func (m *Memory) Close() error {
	return nil
}

// Write stores the block at its index. Blocks must be written in order.
func (m *Memory) Write(block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case block.Index < uint64(len(m.blocks)):
		m.blocks[block.Index] = block
	case block.Index == uint64(len(m.blocks)):
		m.blocks = append(m.blocks, block)
	default:
		return fmt.Errorf("block[%d] written out of order, next index is %d", block.Index, len(m.blocks))
	}

	return nil
}

// GetBlock returns the block for the specified index.
func (m *Memory) GetBlock(index uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index >= uint64(len(m.blocks)) {
		return database.Block{}, fmt.Errorf("block[%d]: %w", index, ErrNotFound)
	}

	return m.blocks[index], nil
}

// ForEach returns an iterator over the blocks starting with genesis.
func (m *Memory) ForEach() database.Iterator {
	return &Iterator{memory: m}
}

// Reset removes every block.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// Iterator walks the blocks held in memory. This implements the
// database.Iterator interface.
type Iterator struct {
	memory  *Memory
	current uint64
	eoc     bool
}

// Next retrieves the next block.
func (it *Iterator) Next() (database.Block, error) {
	if it.eoc {
		return database.Block{}, errors.New("end of chain")
	}

	block, err := it.memory.GetBlock(it.current)
	if errors.Is(err, ErrNotFound) {
		it.eoc = true
	}
	it.current++

	return block, err
}

// Done returns the end of chain value.
func (it *Iterator) Done() bool {
	return it.eoc
}
