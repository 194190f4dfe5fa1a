package public

import (
	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// NewTx is what a client posts to have the node create a transaction. An
// empty from account mints value from the system account.
type NewTx struct {
	From   database.AccountID `json:"from"`
	To     database.AccountID `json:"to" validate:"required"`
	Amount int64              `json:"amount" validate:"gte=0"`
}

// Validate checks the data in the model is considered clean.
func (ntx NewTx) Validate() error {
	return validate.Check(ntx)
}

type submitted struct {
	Transaction    database.Transaction `json:"transaction"`
	MiningSignaled bool                 `json:"mining_signaled"`
}

type balance struct {
	Account database.AccountID `json:"account"`
	Balance int64              `json:"balance"`
}

type actInfo struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Accounts    []balance `json:"accounts"`
}

type chainStatus struct {
	Valid  bool   `json:"valid"`
	Index  uint64 `json:"index,omitempty"`
	Reason string `json:"reason,omitempty"`
}
