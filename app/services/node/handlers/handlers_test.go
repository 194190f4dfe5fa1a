package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/keystore"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/gorilla/websocket"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type node struct {
	state   *state.State
	evts    *events.Events
	public  http.Handler
	private http.Handler
	debug   http.Handler
}

func newNode(t *testing.T, transPerBlock uint16) node {
	ks, err := keystore.New("")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a key store: %s", failed, err)
	}

	evts := events.New()
	ev := func(v string, args ...any) {
		if s := fmt.Sprintf(v, args...); strings.HasPrefix(s, "viewer:") {
			evts.Send(s)
		}
	}

	st, err := state.New(state.Config{
		MinerAccount: "miner",
		NodeID:       "node1",
		Host:         "127.0.0.1:9080",
		Genesis:      genesis.Genesis{TransPerBlock: transPerBlock, Difficulty: 1, MiningReward: 100},
		KeyStore:     ks,
		Miner:        pow.New(pow.Config{Workers: 2, Timeout: time.Minute}),
		EvHandler:    ev,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %s", failed, err)
	}

	log := logger.NewNop()
	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		Evts:     evts,
	}

	return node{
		state:   st,
		evts:    evts,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		debug:   handlers.DebugMux("test", log, st),
	}
}

func do(h http.Handler, method string, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, url, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

// =============================================================================

func Test_SubmitTransaction(t *testing.T) {
	type table struct {
		name       string
		body       any
		statusCode int
	}

	tt := []table{
		{name: "valid", body: map[string]any{"from": "alice", "to": "bob", "amount": 7}, statusCode: http.StatusOK},
		{name: "system", body: map[string]any{"to": "bob", "amount": 7}, statusCode: http.StatusOK},
		{name: "norecipient", body: map[string]any{"from": "alice", "amount": 7}, statusCode: http.StatusBadRequest},
		{name: "negative", body: map[string]any{"from": "alice", "to": "bob", "amount": -1}, statusCode: http.StatusBadRequest},
		{name: "unknownfield", body: map[string]any{"from": "alice", "to": "bob", "value": 7}, statusCode: http.StatusBadRequest},
	}

	t.Log("Given the need to submit transactions over the public api.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
				{
					n := newNode(t, 10)

					w := do(n.public, http.MethodPost, "/v1/tx/submit", tst.body)
					if w.Code != tst.statusCode {
						t.Logf("\t\tTest %d:\tbody: %s", testID, w.Body.String())
						t.Fatalf("\t%s\tTest %d:\tShould receive a %d status code, got %d.", failed, testID, tst.statusCode, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould receive a %d status code.", success, testID, tst.statusCode)

					exp := 0
					if tst.statusCode == http.StatusOK {
						exp = 1
					}
					if got := n.state.QueryMempoolLength(); got != exp {
						t.Fatalf("\t%s\tTest %d:\tShould have %d pending transactions, got %d.", failed, testID, exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould have %d pending transactions.", success, testID, exp)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ValidationResponse(t *testing.T) {
	t.Log("Given the need to report why a request is invalid.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting a transaction without a recipient.", testID)
		{
			n := newNode(t, 10)

			w := do(n.public, http.MethodPost, "/v1/tx/submit", map[string]any{"from": "alice", "amount": 7})

			var resp errs.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the error response: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to decode the error response.", success, testID)

			if _, exists := resp.Fields["to"]; !exists {
				t.Fatalf("\t%s\tTest %d:\tShould name the \"to\" field, got %v.", failed, testID, resp.Fields)
			}
			t.Logf("\t%s\tTest %d:\tShould name the \"to\" field.", success, testID)
		}
	}
}

func Test_Queries(t *testing.T) {
	t.Log("Given the need to query a ledger with a mined block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen one transfer has been mined.", testID)
		{
			n := newNode(t, 1)

			tx, err := n.state.CreateTransaction(context.Background(), "alice", "bob", 7)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create a transaction: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to create a transaction.", success, testID)

			w := do(n.public, http.MethodGet, "/v1/blocks/list", nil)
			var blocks []database.Block
			if err := json.NewDecoder(w.Body).Decode(&blocks); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the blocks: %s", failed, testID, err)
			}
			if len(blocks) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back 2 blocks, got %d.", failed, testID, len(blocks))
			}
			t.Logf("\t%s\tTest %d:\tShould get back 2 blocks.", success, testID)

			w = do(n.public, http.MethodGet, "/v1/blocks/list/carol", nil)
			if w.Code != http.StatusNoContent {
				t.Fatalf("\t%s\tTest %d:\tShould get no content for an unknown account, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get no content for an unknown account.", success, testID)

			w = do(n.public, http.MethodGet, "/v1/accounts/list/bob", nil)
			var ai struct {
				Accounts []struct {
					Account string `json:"account"`
					Balance int64  `json:"balance"`
				} `json:"accounts"`
			}
			if err := json.NewDecoder(w.Body).Decode(&ai); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the balances: %s", failed, testID, err)
			}
			if len(ai.Accounts) != 1 || ai.Accounts[0].Balance != 7 {
				t.Fatalf("\t%s\tTest %d:\tShould see a balance of 7 for bob, got %+v.", failed, testID, ai.Accounts)
			}
			t.Logf("\t%s\tTest %d:\tShould see a balance of 7 for bob.", success, testID)

			w = do(n.public, http.MethodGet, "/v1/chain/validate", nil)
			var cs struct {
				Valid bool `json:"valid"`
			}
			if err := json.NewDecoder(w.Body).Decode(&cs); err != nil || !cs.Valid {
				t.Fatalf("\t%s\tTest %d:\tShould report the chain as valid: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould report the chain as valid.", success, testID)

			w = do(n.public, http.MethodGet, "/v1/tx/proof/1/"+tx.ID, nil)
			var proof state.TxProof
			if err := json.NewDecoder(w.Body).Decode(&proof); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the proof: %s", failed, testID, err)
			}
			if !proof.Verify() {
				t.Fatalf("\t%s\tTest %d:\tShould get back a proof that verifies.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a proof that verifies.", success, testID)

			w = do(n.public, http.MethodGet, "/v1/tx/proof/1/unknown", nil)
			if w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould get not found for an unknown transaction, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould get not found for an unknown transaction.", success, testID)

			w = do(n.public, http.MethodGet, "/v1/tx/uncommitted/list", nil)
			var pending []database.Transaction
			if err := json.NewDecoder(w.Body).Decode(&pending); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the pool: %s", failed, testID, err)
			}
			if len(pending) != 1 || pending[0].ToID != "miner" {
				t.Fatalf("\t%s\tTest %d:\tShould see the pending mining reward, got %+v.", failed, testID, pending)
			}
			t.Logf("\t%s\tTest %d:\tShould see the pending mining reward.", success, testID)
		}
	}
}

func Test_SignalMining(t *testing.T) {
	t.Log("Given the need to ask the node to mine.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen no mining worker is running.", testID)
		{
			n := newNode(t, 3)

			w := do(n.public, http.MethodPost, "/v1/mining/signal", nil)
			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("\t%s\tTest %d:\tShould receive a %d status code, got %d.", failed, testID, http.StatusServiceUnavailable, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a %d status code.", success, testID, http.StatusServiceUnavailable)
		}
	}
}

func Test_RegisterNode(t *testing.T) {
	t.Log("Given the need to register peers with a node.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two nodes register.", testID)
		{
			n := newNode(t, 3)

			do(n.private, http.MethodPost, "/v1/register/node", peer.RegisterRequest{NodeAddress: "127.0.0.1:9180"})
			w := do(n.private, http.MethodPost, "/v1/register/node", peer.RegisterRequest{NodeAddress: "127.0.0.1:9280"})

			var resp peer.RegisterResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %s", failed, testID, err)
			}

			exp := []string{"127.0.0.1:9180", "127.0.0.1:9280"}
			if len(resp.TotalNodes) != len(exp) || resp.TotalNodes[0] != exp[0] || resp.TotalNodes[1] != exp[1] {
				t.Fatalf("\t%s\tTest %d:\tShould get back %v, got %v.", failed, testID, exp, resp.TotalNodes)
			}
			t.Logf("\t%s\tTest %d:\tShould get back every node including the caller.", success, testID)

			w = do(n.private, http.MethodPost, "/v1/register/node", map[string]any{})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject a missing node address, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a missing node address.", success, testID)

			w = do(n.private, http.MethodGet, "/v1/node/status", nil)
			var ps peer.PeerStatus
			if err := json.NewDecoder(w.Body).Decode(&ps); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the status: %s", failed, testID, err)
			}
			if ps.LatestBlockIndex != 0 || len(ps.KnownPeers) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould see the genesis block and 2 peers, got %+v.", failed, testID, ps)
			}
			t.Logf("\t%s\tTest %d:\tShould see the genesis block and 2 peers.", success, testID)
		}
	}
}

func Test_BlocksByNumber(t *testing.T) {
	type table struct {
		name       string
		url        string
		statusCode int
		blocks     int
	}

	tt := []table{
		{name: "all", url: "/v1/node/block/list/0/latest", statusCode: http.StatusOK, blocks: 2},
		{name: "latest", url: "/v1/node/block/list/latest/latest", statusCode: http.StatusOK, blocks: 1},
		{name: "pastend", url: "/v1/node/block/list/5/9", statusCode: http.StatusNoContent},
		{name: "reversed", url: "/v1/node/block/list/1/0", statusCode: http.StatusBadRequest},
		{name: "badindex", url: "/v1/node/block/list/a/1", statusCode: http.StatusBadRequest},
	}

	t.Log("Given the need to retrieve blocks by index.")
	{
		n := newNode(t, 1)
		if _, err := n.state.CreateTransaction(context.Background(), "alice", "bob", 7); err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}

		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen asking for %s blocks.", testID, tst.name)
				{
					w := do(n.private, http.MethodGet, tst.url, nil)
					if w.Code != tst.statusCode {
						t.Fatalf("\t%s\tTest %d:\tShould receive a %d status code, got %d.", failed, testID, tst.statusCode, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould receive a %d status code.", success, testID, tst.statusCode)

					if tst.statusCode != http.StatusOK {
						return
					}

					var blocks []database.Block
					if err := json.NewDecoder(w.Body).Decode(&blocks); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to decode the blocks: %s", failed, testID, err)
					}
					if len(blocks) != tst.blocks {
						t.Fatalf("\t%s\tTest %d:\tShould get back %d blocks, got %d.", failed, testID, tst.blocks, len(blocks))
					}
					t.Logf("\t%s\tTest %d:\tShould get back %d blocks.", success, testID, tst.blocks)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Readiness(t *testing.T) {
	t.Log("Given the need to check the health of a node.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the chain is intact.", testID)
		{
			n := newNode(t, 3)

			w := do(n.debug, http.MethodGet, "/debug/readiness", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a %d status code, got %d.", failed, testID, http.StatusOK, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a %d status code.", success, testID, http.StatusOK)
		}
	}
}

func Test_Events(t *testing.T) {
	t.Log("Given the need to stream node events to a viewer.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a transaction is submitted.", testID)
		{
			n := newNode(t, 10)

			srv := httptest.NewServer(n.public)
			defer srv.Close()

			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
			c, _, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open the websocket: %s", failed, testID, err)
			}
			defer c.Close()
			t.Logf("\t%s\tTest %d:\tShould be able to open the websocket.", success, testID)

			deadline := time.Now().Add(5 * time.Second)
			for n.evts.Count() == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}

			if _, _, err := n.state.SubmitTransaction("alice", "bob", 7); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit a transaction: %s", failed, testID, err)
			}

			c.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, msg, err := c.ReadMessage()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read an event: %s", failed, testID, err)
			}

			if !strings.HasPrefix(string(msg), "viewer: newTx") {
				t.Fatalf("\t%s\tTest %d:\tShould receive the new transaction event, got %q.", failed, testID, msg)
			}
			t.Logf("\t%s\tTest %d:\tShould receive the new transaction event.", success, testID)
		}
	}
}
