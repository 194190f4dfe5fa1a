package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/keystore"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// journal runs a ledger over a disk journal and reads the blocks back.
func journal(t *testing.T) ([]database.Block, *keystore.KeyStore) {
	ks, err := keystore.New("")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a key store: %s", failed, err)
	}

	strg, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open a journal: %s", failed, err)
	}

	st, err := state.New(state.Config{
		MinerAccount: "miner",
		NodeID:       "node1",
		Host:         "127.0.0.1:9080",
		Genesis:      genesis.Genesis{TransPerBlock: 1, Difficulty: 1, MiningReward: 100},
		KeyStore:     ks,
		Miner:        pow.New(pow.Config{Workers: 2, Timeout: time.Minute}),
		Storage:      strg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %s", failed, err)
	}

	if _, err := st.CreateTransaction(context.Background(), "alice", "bob", 7); err != nil {
		t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
	}

	blocks, err := database.ReadAll(strg)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to read the journal: %s", failed, err)
	}

	return blocks, ks
}

// =============================================================================

func Test_Commands(t *testing.T) {
	t.Log("Given the need to inspect a block journal.")
	{
		blocks, ks := journal(t)

		testID := 0
		t.Logf("\tTest %d:\tWhen printing balances.", testID)
		{
			var buf bytes.Buffer
			if err := commands.Balances(&buf, blocks, ""); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to print balances: %s", failed, testID, err)
			}

			for _, exp := range []string{`Account: "alice"  Balance: -7`, `Account: "bob"  Balance: 7`} {
				if !strings.Contains(buf.String(), exp) {
					t.Fatalf("\t%s\tTest %d:\tShould print %s, got:\n%s", failed, testID, exp, buf.String())
				}
			}
			t.Logf("\t%s\tTest %d:\tShould print every balance.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen printing blocks for an account.", testID)
		{
			var buf bytes.Buffer
			if err := commands.Blocks(&buf, blocks, "bob"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to print blocks: %s", failed, testID, err)
			}

			if !strings.Contains(buf.String(), "Block[1]") || strings.Contains(buf.String(), "Block[0]") {
				t.Fatalf("\t%s\tTest %d:\tShould only print block 1, got:\n%s", failed, testID, buf.String())
			}
			t.Logf("\t%s\tTest %d:\tShould only print block 1.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen validating the journal.", testID)
		{
			var buf bytes.Buffer
			if err := commands.Validate(&buf, blocks, ks, 1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould validate the journal: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate the journal.", success, testID)

			if ce := database.GetChainError(commands.Validate(&buf, blocks, ks, 2)); ce == nil || ce.Index != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould reject blocks below the chain difficulty.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject blocks below the chain difficulty.", success, testID)

			blocks[1].Transactions[0].Amount = 700
			err := commands.Validate(&buf, blocks, ks, 1)
			if ce := database.GetChainError(err); ce == nil || ce.Index != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould report block 1 as broken, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould report block 1 as broken.", success, testID)
		}
	}
}
