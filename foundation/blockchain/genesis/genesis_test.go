package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	type table struct {
		name    string
		content string
		exp     genesis.Genesis
		fail    bool
	}

	tt := []table{
		{name: "defaults", content: `{}`, exp: genesis.Genesis{ChainID: 1, TransPerBlock: 3, Difficulty: 2, MiningReward: 100}},
		{name: "override", content: `{"trans_per_block": 5, "difficulty": 4, "mining_reward": 700}`, exp: genesis.Genesis{ChainID: 1, TransPerBlock: 5, Difficulty: 4, MiningReward: 700}},
		{name: "notrigger", content: `{"trans_per_block": 0}`, fail: true},
		{name: "difficulty", content: `{"difficulty": 65}`, fail: true},
		{name: "reward", content: `{"mining_reward": -1}`, fail: true},
		{name: "badjson", content: `{`, fail: true},
	}

	t.Log("Given the need to load a genesis file.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "genesis.json")
				if err := os.WriteFile(path, []byte(tst.content), 0600); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %s", failed, testID, err)
				}

				g, err := genesis.Load(path)
				if tst.fail {
					if err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould fail to load the file.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould fail to load the file.", success, testID)
					return
				}

				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to load the file: %s", failed, testID, err)
				}

				g.Date = tst.exp.Date
				if g != tst.exp {
					t.Logf("\t\tTest %d:\tgot: %+v", testID, g)
					t.Logf("\t\tTest %d:\texp: %+v", testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get back the expected parameters.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the expected parameters.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_WithDefaults(t *testing.T) {
	type table struct {
		name string
		gen  genesis.Genesis
		exp  genesis.Genesis
	}

	tt := []table{
		{name: "empty", gen: genesis.Genesis{}, exp: genesis.Genesis{ChainID: 1, TransPerBlock: 3, Difficulty: 2, MiningReward: 100}},
		{name: "trigger", gen: genesis.Genesis{TransPerBlock: 5}, exp: genesis.Genesis{ChainID: 1, TransPerBlock: 5, Difficulty: 2, MiningReward: 100}},
		{name: "difficulty", gen: genesis.Genesis{Difficulty: 4}, exp: genesis.Genesis{ChainID: 1, TransPerBlock: 3, Difficulty: 4, MiningReward: 100}},
		{name: "all", gen: genesis.Genesis{ChainID: 7, TransPerBlock: 1, Difficulty: 1, MiningReward: 50}, exp: genesis.Genesis{ChainID: 7, TransPerBlock: 1, Difficulty: 1, MiningReward: 50}},
	}

	t.Log("Given the need to fill in unset genesis parameters.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				g := tst.gen.WithDefaults()
				if g.Date.IsZero() {
					t.Fatalf("\t%s\tTest %d:\tShould set the date.", failed, testID)
				}

				g.Date = tst.exp.Date
				if g != tst.exp {
					t.Logf("\t\tTest %d:\tgot: %+v", testID, g)
					t.Logf("\t\tTest %d:\texp: %+v", testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould keep set parameters and default the rest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould keep set parameters and default the rest.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
