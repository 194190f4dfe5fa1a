package database

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// Signer represents the behavior required to sign a digest on behalf of a
// node identity.
type Signer interface {
	Sign(digest []byte, nodeID string) ([]byte, error)
}

// Verifier represents the behavior required to check a signature was made
// over a digest by a node identity. A malformed signature returns an error.
type Verifier interface {
	Verify(digest []byte, sig []byte, nodeID string) error
}

// =============================================================================

// Transaction is a signed transfer of value between two accounts. It is
// signed by the node that created it and is never changed after that.
type Transaction struct {
	ID        string        `json:"id"`        // Unique id generated when the transaction is created.
	NodeID    string        `json:"node_id"`   // Identity of the node that signed the transaction.
	FromID    AccountID     `json:"from"`      // Account sending the value, empty for system minted value.
	ToID      AccountID     `json:"to"`        // Account receiving the value.
	Amount    int64         `json:"amount"`    // Value being transferred.
	Signature hexutil.Bytes `json:"signature"` // Signature over the transaction digest.
}

// NewTransaction constructs a transaction and signs it on behalf of the
// node identity.
func NewTransaction(signer Signer, nodeID string, fromID AccountID, toID AccountID, amount int64) (Transaction, error) {
	var reasons []string
	if toID == "" {
		reasons = append(reasons, "to account is required")
	}
	if nodeID == "" {
		reasons = append(reasons, "node id is required")
	}
	if amount < 0 {
		reasons = append(reasons, fmt.Sprintf("amount %d is negative", amount))
	}
	if len(reasons) > 0 {
		return Transaction{}, newValidationError("new transaction", reasons...)
	}

	tx := Transaction{
		ID:     uuid.NewString(),
		NodeID: nodeID,
		FromID: fromID,
		ToID:   toID,
		Amount: amount,
	}

	sig, err := signer.Sign(tx.Digest(), nodeID)
	if err != nil {
		return Transaction{}, fmt.Errorf("signing transaction: %w", err)
	}
	tx.Signature = sig

	return tx, nil
}

// Digest returns the digest of the transaction content that is signed.
func (tx Transaction) Digest() []byte {
	content := fmt.Sprintf("%s|%s|%s|%s|%d", tx.ID, tx.NodeID, tx.FromID, tx.ToID, tx.Amount)
	return signature.Digest(content)
}

// IsValid reports whether the transaction carries a signature made over its
// current content by its node identity.
func (tx Transaction) IsValid(v Verifier) bool {
	if len(tx.Signature) == 0 {
		return false
	}

	return v.Verify(tx.Digest(), tx.Signature, tx.NodeID) == nil
}

// IsZero reports whether the transaction holds no data.
func (tx Transaction) IsZero() bool {
	return tx.ID == "" && tx.NodeID == "" && tx.FromID == "" && tx.ToID == "" && tx.Amount == 0 && len(tx.Signature) == 0
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction. The signature is part of the hash.
func (tx Transaction) Hash() ([]byte, error) {
	return hex.DecodeString(signature.Hash(tx))
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions. If the id and signatures are the same,
// the two transactions are the same.
func (tx Transaction) Equals(otherTx Transaction) bool {
	return tx.ID == otherTx.ID && bytes.Equal(tx.Signature, otherTx.Signature)
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	from := string(tx.FromID)
	if tx.FromID.IsSystem() {
		from = "system"
	}

	return fmt.Sprintf("%s:%s->%s:%d", tx.ID, from, tx.ToID, tx.Amount)
}
