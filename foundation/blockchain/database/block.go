package database

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	sha256 "github.com/minio/sha256-simd"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// Miner represents the behavior required to find a nonce for a block. On
// success the block's Nonce, CurrentHash and Difficulty are set.
type Miner interface {
	Mine(ctx context.Context, b *Block, difficulty uint) error
}

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the previous block in the chain by its hash.
type Block struct {
	TimeStamp    uint64        `json:"timestamp"`     // Unix milliseconds when the block was created.
	Transactions []Transaction `json:"transactions"`  // Transactions in the order they were pooled.
	Index        uint64        `json:"index"`         // Position of the block in the chain.
	PreviousHash string        `json:"previous_hash"` // Hash of the preceding block, "0" for genesis.
	CurrentHash  string        `json:"current_hash"`  // Hash of this block, set when sealed.
	Nonce        uint64        `json:"nonce"`         // Value identified to solve the hash solution.
	Difficulty   uint          `json:"difficulty"`    // Number of leading 0's in the hash solution.
	TransRoot    string        `json:"trans_root"`    // Merkle root of the transactions.
}

// NewBlock constructs a block for the specified transactions. Every
// transaction must carry a valid signature.
func NewBlock(v Verifier, timeStamp uint64, trans []Transaction, index uint64) (Block, error) {
	var reasons []string
	if timeStamp == 0 {
		reasons = append(reasons, "timestamp is required")
	}
	if len(trans) == 0 {
		reasons = append(reasons, "transactions are required")
	}
	for i, tx := range trans {
		if tx.IsZero() {
			reasons = append(reasons, fmt.Sprintf("transaction[%d] is empty", i))
		}
	}
	if len(reasons) > 0 {
		return Block{}, newValidationError("new block", reasons...)
	}

	var invalid []string
	for _, tx := range trans {
		if !tx.IsValid(v) {
			invalid = append(invalid, tx.ID)
		}
	}
	if len(invalid) > 0 {
		return Block{}, newValidationError("new block", fmt.Sprintf("invalid transactions: %s", strings.Join(invalid, ", ")))
	}

	b := Block{
		TimeStamp:    timeStamp,
		Transactions: append([]Transaction(nil), trans...),
		Index:        index,
	}

	tree, err := b.Tree()
	if err != nil {
		return Block{}, err
	}
	b.TransRoot = tree.RootHex()

	return b, nil
}

// Tree constructs the merkle tree for the block's transactions.
func (b Block) Tree() (*merkle.Tree[Transaction], error) {
	return merkle.NewTree(b.Transactions)
}

// HashFunc returns a function that hashes the block for any nonce. The
// transactions are only hashed once so a miner can search nonces cheaply.
func (b Block) HashFunc() (func(nonce uint64) string, error) {
	tree, err := b.Tree()
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("%d|%s|%d|%s|", b.TimeStamp, tree.RootHex(), b.Index, b.PreviousHash)

	f := func(nonce uint64) string {
		data := make([]byte, len(prefix), len(prefix)+20)
		copy(data, prefix)
		data = strconv.AppendUint(data, nonce, 10)

		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}

	return f, nil
}

// ComputeHash returns the hash of the block's timestamp, transactions, index,
// previous hash and nonce. An empty string is returned for a block with no
// transactions.
func (b Block) ComputeHash() string {
	f, err := b.HashFunc()
	if err != nil {
		return ""
	}

	return f(b.Nonce)
}

// Mine asks the miner to find a nonce that solves the block at the
// specified difficulty. Pointer semantics are being used since a nonce is
// being discovered.
func (b *Block) Mine(ctx context.Context, m Miner, difficulty uint) error {
	return m.Mine(ctx, b, difficulty)
}

// HasValidTransactions reports whether every transaction in the block
// carries a valid signature.
func (b Block) HasValidTransactions(v Verifier) bool {
	if len(b.Transactions) == 0 {
		return false
	}

	for _, tx := range b.Transactions {
		if !tx.IsValid(v) {
			return false
		}
	}

	return true
}

// =============================================================================

// ValidateChain walks the chain from the block after genesis and returns a
// ChainError for the first block that breaks the chain's integrity. The
// difficulty is not part of the hash, so every block must also claim at
// least minDifficulty.
func ValidateChain(v Verifier, blocks []Block, minDifficulty uint) error {
	if len(blocks) == 0 {
		return &ChainError{Reason: "chain has no genesis block"}
	}

	for i := 1; i < len(blocks); i++ {
		block := blocks[i]
		prev := blocks[i-1]
		index := uint64(i)

		if !block.HasValidTransactions(v) {
			return &ChainError{Index: index, Reason: "block has invalid transactions"}
		}

		if hash := block.ComputeHash(); block.CurrentHash != hash {
			return &ChainError{Index: index, Reason: fmt.Sprintf("hash mismatch, got %s, exp %s", block.CurrentHash, hash)}
		}

		if block.PreviousHash != prev.CurrentHash {
			return &ChainError{Index: index, Reason: fmt.Sprintf("previous hash mismatch, got %s, exp %s", block.PreviousHash, prev.CurrentHash)}
		}

		if tree, err := block.Tree(); err != nil || tree.RootHex() != block.TransRoot {
			return &ChainError{Index: index, Reason: "merkle root does not match transactions"}
		}

		if block.Index != index {
			return &ChainError{Index: index, Reason: fmt.Sprintf("index mismatch, got %d", block.Index)}
		}

		if block.Difficulty < minDifficulty {
			return &ChainError{Index: index, Reason: fmt.Sprintf("difficulty %d below chain difficulty %d", block.Difficulty, minDifficulty)}
		}

		if !IsHashSolved(block.Difficulty, block.CurrentHash) {
			return &ChainError{Index: index, Reason: fmt.Sprintf("hash does not solve difficulty %d", block.Difficulty)}
		}
	}

	return nil
}

// IsHashSolved checks the hash to make sure it complies with the POW
// rules. We need to match a difficulty number of leading 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	if len(hash) != 2*sha256.Size || difficulty > uint(len(hash)) {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}
