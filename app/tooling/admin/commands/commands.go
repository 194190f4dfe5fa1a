// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Balances prints the balance of every account in the journal, or only the
// account specified.
func Balances(w io.Writer, blocks []database.Block, account database.AccountID) error {
	if len(blocks) == 0 {
		return errors.New("journal is empty")
	}

	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", blocks[len(blocks)-1].CurrentHash)

	if account != "" {
		fmt.Fprintf(w, "Account: %q  Balance: %d\n", account, accounts.Balance(blocks, account))
		return nil
	}

	bals := accounts.Tally(blocks)

	ids := make([]database.AccountID, 0, len(bals))
	for id := range bals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		fmt.Fprintf(w, "Account: %q  Balance: %d\n", id, bals[id])
	}

	return nil
}

// Blocks prints every block holding a transaction for the account, or every
// block when no account is specified.
func Blocks(w io.Writer, blocks []database.Block, account database.AccountID) error {
	for _, block := range blocks {
		var trans []database.Transaction
		for _, tx := range block.Transactions {
			if account == "" || tx.FromID == account || tx.ToID == account {
				trans = append(trans, tx)
			}
		}
		if len(trans) == 0 {
			continue
		}

		fmt.Fprintf(w, "Block[%d]  Hash: %s  Prev: %s  Nonce: %d  Difficulty: %d\n",
			block.Index, block.CurrentHash, block.PreviousHash, block.Nonce, block.Difficulty)
		for _, tx := range trans {
			fmt.Fprintf(w, "    %s\n", tx)
		}
	}

	return nil
}

// Validate checks the integrity of every block in the journal. Every block
// must be mined at the specified difficulty or above.
func Validate(w io.Writer, blocks []database.Block, v database.Verifier, difficulty uint16) error {
	if err := database.ValidateChain(v, blocks, uint(difficulty)); err != nil {
		return err
	}

	fmt.Fprintf(w, "Chain of %d blocks is valid\n", len(blocks))
	return nil
}
