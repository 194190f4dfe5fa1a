package worker

import (
	"context"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// peerRequestTimeout bounds a single round of peer requests.
const peerRequestTimeout = 30 * time.Second

// peerOperations handles finding new peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	w.runDiscoveryOperation()

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runDiscoveryOperation registers this node with the discovery node and the
// peers it knows about.
func (w *Worker) runDiscoveryOperation() {
	host := w.state.RetrieveHost()
	if w.discoveryHost == "" || w.discoveryHost == host {
		return
	}

	w.evHandler("worker: runDiscoveryOperation: started")
	defer w.evHandler("worker: runDiscoveryOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), peerRequestTimeout)
	defer cancel()

	peers, err := w.client.Discover(ctx, w.discoveryHost, host)
	if err != nil {
		w.evHandler("worker: runDiscoveryOperation: discover: ERROR: %s", err)
		return
	}

	w.addNewPeers(peers)
}

// runPeersOperation updates the peer list.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), peerRequestTimeout)
	defer cancel()

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.client.Status(ctx, pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			w.state.RemoveKnownPeer(pr)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of known peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	for _, pr := range knownPeers {
		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: adding peer-node %s", pr)
		}
	}
}
