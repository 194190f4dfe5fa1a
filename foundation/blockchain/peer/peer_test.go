package peer_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host3"}, {Host: "host1"}, {Host: "host2"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				if !ps.Add(peer) {
					t.Fatalf("\t%s\tTest %s:\tShould be able to add %s.", failed, tst.name, peer)
				}
			}

			if ps.Add(tst.peers[0]) {
				t.Fatalf("\t%s\tTest %s:\tShould not add a known peer twice.", failed, tst.name)
			}
			t.Logf("\t%s\tTest %s:\tShould not add a known peer twice.", success, tst.name)

			if ps.Add(peer.New("")) {
				t.Fatalf("\t%s\tTest %s:\tShould not add a peer with no host.", failed, tst.name)
			}
			t.Logf("\t%s\tTest %s:\tShould not add a peer with no host.", success, tst.name)

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("\t\tTest %s:\tgot: %d", tst.name, len(peers))
				t.Logf("\t\tTest %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("\t%s\tTest %s:\tShould get back the right peers.", failed, tst.name)
			}

			if peers[0].Host != "host1" || peers[2].Host != "host3" {
				t.Logf("\t\tTest %s:\tgot: %v", tst.name, peers)
				t.Fatalf("\t%s\tTest %s:\tShould get back the peers sorted by host.", failed, tst.name)
			}
			t.Logf("\t%s\tTest %s:\tShould get back the peers sorted by host.", success, tst.name)

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("\t\tTest %s:\tgot: %d", tst.name, len(peers))
				t.Logf("\t\tTest %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("\t%s\tTest %s:\tShould leave out the specified host.", failed, tst.name)
			}
			t.Logf("\t%s\tTest %s:\tShould leave out the specified host.", success, tst.name)

			ps.Remove(peer.New("host1"))
			if len(ps.Copy("")) != len(tst.peers)-1 {
				t.Fatalf("\t%s\tTest %s:\tShould be able to remove a peer.", failed, tst.name)
			}
			t.Logf("\t%s\tTest %s:\tShould be able to remove a peer.", success, tst.name)
		}

		t.Run(tst.name, f)
	}
}
