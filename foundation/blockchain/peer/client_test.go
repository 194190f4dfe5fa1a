package peer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// registry is a node that records the peers that register with it.
type registry struct {
	mu    sync.Mutex
	self  string
	nodes []string
}

func (r *registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/v1/register/node":
		var rr peer.RegisterRequest
		if err := json.NewDecoder(req.Body).Decode(&rr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		r.mu.Lock()
		r.nodes = append(r.nodes, rr.NodeAddress)
		resp := peer.RegisterResponse{TotalNodes: append([]string{r.self}, r.nodes...)}
		r.mu.Unlock()

		json.NewEncoder(w).Encode(resp)

	case "/v1/node/status":
		json.NewEncoder(w).Encode(peer.PeerStatus{
			LatestBlockHash:  "abc",
			LatestBlockIndex: 4,
			KnownPeers:       []peer.Peer{peer.New("host1")},
		})

	default:
		http.NotFound(w, req)
	}
}

func (r *registry) registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.nodes...)
}

// =============================================================================

func Test_Discover(t *testing.T) {
	t.Log("Given the need to discover peers through a discovery node.")
	{
		other := &registry{}
		otherSrv := httptest.NewServer(other)
		defer otherSrv.Close()
		other.self = otherSrv.URL

		discovery := &registry{}
		discoverySrv := httptest.NewServer(discovery)
		defer discoverySrv.Close()
		discovery.self = discoverySrv.URL

		// The discovery node already knows about the other node and a node
		// that is no longer running.
		discovery.nodes = []string{otherSrv.URL, "127.0.0.1:1"}

		const self = "127.0.0.1:9080"
		client := peer.NewClient(time.Second, nil)

		peers, err := client.Discover(context.Background(), discoverySrv.URL, self)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to discover peers: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to discover peers.", success)

		if len(peers) != 2 || !peers[0].Match(discoverySrv.URL) || !peers[1].Match(otherSrv.URL) {
			t.Logf("\t\tgot: %v", peers)
			t.Fatalf("\t%s\tShould get back the reachable peers.", failed)
		}
		t.Logf("\t%s\tShould get back the reachable peers.", success)

		if got := other.registered(); len(got) != 1 || got[0] != self {
			t.Logf("\t\tgot: %v", got)
			t.Fatalf("\t%s\tShould cross register with the discovered peer.", failed)
		}
		t.Logf("\t%s\tShould cross register with the discovered peer.", success)
	}
}

func Test_Status(t *testing.T) {
	srv := httptest.NewServer(&registry{})
	defer srv.Close()

	client := peer.NewClient(time.Second, nil)

	ps, err := client.Status(context.Background(), peer.New(srv.URL))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to get the peer status: %s", failed, err)
	}

	if ps.LatestBlockIndex != 4 || ps.LatestBlockHash != "abc" || len(ps.KnownPeers) != 1 {
		t.Logf("\t\tgot: %+v", ps)
		t.Fatalf("\t%s\tShould get back the peer status.", failed)
	}
	t.Logf("\t%s\tShould get back the peer status.", success)
}

func Test_RegisterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not accepting peers", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := peer.NewClient(time.Second, nil)

	if _, err := client.Register(context.Background(), srv.URL, "self"); err == nil {
		t.Fatalf("\t%s\tShould get an error from a failing node.", failed)
	}
	t.Logf("\t%s\tShould get an error from a failing node.", success)
}
