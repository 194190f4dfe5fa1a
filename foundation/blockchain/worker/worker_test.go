package worker_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/keystore"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T, host string) *state.State {
	ks, err := keystore.New("")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a key store: %s", failed, err)
	}

	s, err := state.New(state.Config{
		MinerAccount: "miner",
		NodeID:       "node1",
		Host:         host,
		Genesis:      genesis.Genesis{TransPerBlock: 3, Difficulty: 1, MiningReward: 100},
		KeyStore:     ks,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %s", failed, err)
	}

	return s
}

// waitFor polls the condition until it is true or the timeout passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// =============================================================================

func Test_Mining(t *testing.T) {
	t.Log("Given the need to mine in the background.")
	{
		s := newState(t, "127.0.0.1:9080")
		worker.Run(worker.Config{State: s})
		defer s.Shutdown()

		for i := 0; i < 3; i++ {
			if _, _, err := s.SubmitTransaction("A", "B", 1); err != nil {
				t.Fatalf("\t%s\tShould be able to submit a transaction: %s", failed, err)
			}
		}
		t.Logf("\t%s\tShould be able to submit transactions.", success)

		mined := waitFor(10*time.Second, func() bool {
			return len(s.RetrieveChain()) == 2
		})
		if !mined {
			t.Fatalf("\t%s\tShould mine the full pool in the background.", failed)
		}
		t.Logf("\t%s\tShould mine the full pool in the background.", success)

		if n := s.QueryMempoolLength(); n != 1 {
			t.Fatalf("\t%s\tShould leave the reward pending, pool length %d.", failed, n)
		}
		t.Logf("\t%s\tShould leave the reward pending.", success)

		if !s.IsChainValid() {
			t.Fatalf("\t%s\tShould have a valid chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)
	}
}

func Test_Discovery(t *testing.T) {
	t.Log("Given the need to discover peers when the node starts.")
	{
		const self = "127.0.0.1:9080"

		var mu sync.Mutex
		var registered string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v1/register/node":
				var rr peer.RegisterRequest
				json.NewDecoder(r.Body).Decode(&rr)
				mu.Lock()
				registered = rr.NodeAddress
				mu.Unlock()
				json.NewEncoder(w).Encode(peer.RegisterResponse{TotalNodes: []string{rr.NodeAddress}})
			case "/v1/node/status":
				json.NewEncoder(w).Encode(peer.PeerStatus{})
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		s := newState(t, self)
		worker.Run(worker.Config{
			State:         s,
			Client:        peer.NewClient(time.Second, nil),
			DiscoveryHost: srv.URL,
		})
		defer s.Shutdown()

		found := waitFor(5*time.Second, func() bool {
			peers := s.RetrieveKnownPeers()
			return len(peers) == 1 && peers[0].Match(srv.URL)
		})
		if !found {
			t.Logf("\t\tgot: %v", s.RetrieveKnownPeers())
			t.Fatalf("\t%s\tShould add the discovery node as a peer.", failed)
		}
		t.Logf("\t%s\tShould add the discovery node as a peer.", success)

		mu.Lock()
		got := registered
		mu.Unlock()

		if got != self {
			t.Fatalf("\t%s\tShould register this node with the discovery node, got %q.", failed, got)
		}
		t.Logf("\t%s\tShould register this node with the discovery node.", success)
	}
}
