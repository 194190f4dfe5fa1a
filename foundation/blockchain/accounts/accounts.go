// Package accounts computes account balances from the blocks of a chain.
// There is no stored balance, every value is derived by walking the blocks.
package accounts

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Balance walks every transaction in the blocks adding the amounts received
// by the account and subtracting the amounts sent by it.
func Balance(blocks []database.Block, accountID database.AccountID) int64 {
	var balance int64

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if tx.ToID == accountID {
				balance += tx.Amount
			}
			if tx.FromID == accountID {
				balance -= tx.Amount
			}
		}
	}

	return balance
}

// Tally returns the balance of every account found in the blocks. The system
// account and the no recipient marker are not real accounts and are left out.
func Tally(blocks []database.Block) map[database.AccountID]int64 {
	balances := make(map[database.AccountID]int64)

	apply := func(accountID database.AccountID, amount int64) {
		if accountID == database.SystemAccount || accountID == database.NoRecipient {
			return
		}
		balances[accountID] += amount
	}

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			apply(tx.ToID, tx.Amount)
			apply(tx.FromID, -tx.Amount)
		}
	}

	return balances
}
