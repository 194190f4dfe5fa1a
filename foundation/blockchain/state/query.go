package state

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// ErrNotFound is returned when a block or transaction does not exist.
var ErrNotFound = errors.New("not found")

// TxProof is the merkle proof that a transaction is part of a block.
type TxProof struct {
	BlockIndex  uint64               `json:"block_index"`
	TransRoot   string               `json:"trans_root"`
	Transaction database.Transaction `json:"transaction"`
	Leaf        string               `json:"leaf"`
	Proof       []string             `json:"proof"`
	Order       []int64              `json:"order"`
}

// Verify recalculates the merkle root from the proof and compares it to the
// block's root.
func (p TxProof) Verify() bool {
	leaf, err := hex.DecodeString(p.Leaf)
	if err != nil {
		return false
	}

	root, err := hex.DecodeString(p.TransRoot)
	if err != nil {
		return false
	}

	proof := make([][]byte, len(p.Proof))
	for i, h := range p.Proof {
		if proof[i], err = hex.DecodeString(h); err != nil {
			return false
		}
	}

	return merkle.VerifyProof(merkle.DefaultHashStrategy, leaf, proof, p.Order, root)
}

// =============================================================================

// GetBalance returns the balance of the account by walking every block in
// the chain.
func (s *State) GetBalance(accountID database.AccountID) int64 {
	return accounts.Balance(s.snapshot(), accountID)
}

// Balances returns the balance of every account in the chain.
func (s *State) Balances() map[database.AccountID]int64 {
	return accounts.Tally(s.snapshot())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block index. Indexes
// past the latest block are ignored.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	chain := s.snapshot()
	latest := uint64(len(chain) - 1)

	if from == QueryLatest {
		from = latest
		to = from
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	if from > to {
		return nil
	}

	return append([]database.Block(nil), chain[from:to+1]...)
}

// QueryBlocksByAccount returns the set of blocks holding a transaction from
// or to the account. If the account is empty, all blocks are returned.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.Block {
	var out []database.Block

	for _, block := range s.snapshot() {
		for _, tx := range block.Transactions {
			if accountID == "" || tx.FromID == accountID || tx.ToID == accountID {
				out = append(out, block)
				break
			}
		}
	}

	return out
}

// QueryTransactionProof returns the merkle proof for the transaction in the
// block at the specified index.
func (s *State) QueryTransactionProof(index uint64, txID string) (TxProof, error) {
	chain := s.snapshot()
	if index >= uint64(len(chain)) {
		return TxProof{}, fmt.Errorf("block[%d]: %w", index, ErrNotFound)
	}
	block := chain[index]

	var tx database.Transaction
	for _, t := range block.Transactions {
		if t.ID == txID {
			tx = t
			break
		}
	}
	if tx.ID == "" {
		return TxProof{}, fmt.Errorf("block[%d]: tx[%s]: %w", index, txID, ErrNotFound)
	}

	tree, err := block.Tree()
	if err != nil {
		return TxProof{}, err
	}

	proof, order, err := tree.Proof(tx)
	if err != nil {
		return TxProof{}, err
	}

	leaf, err := tx.Hash()
	if err != nil {
		return TxProof{}, err
	}

	txp := TxProof{
		BlockIndex:  index,
		TransRoot:   block.TransRoot,
		Transaction: tx,
		Leaf:        hex.EncodeToString(leaf),
		Proof:       make([]string, len(proof)),
		Order:       order,
	}
	for i, p := range proof {
		txp.Proof[i] = hex.EncodeToString(p)
	}

	return txp, nil
}

// =============================================================================

// ValidateChain walks the chain and returns a database.ChainError for the
// first block that breaks its integrity.
func (s *State) ValidateChain() error {
	return database.ValidateChain(s.keyStore, s.snapshot(), uint(s.genesis.Difficulty))
}

// IsChainValid reports whether the chain is intact. The reason a chain is
// invalid is sent to the event handler. Nothing is repaired.
func (s *State) IsChainValid() bool {
	if err := s.ValidateChain(); err != nil {
		s.evHandler("state: IsChainValid: INVALID: %s", err)
		return false
	}

	return true
}
