package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RegisterRequest is sent to a node to register the sender as a peer.
type RegisterRequest struct {
	NodeAddress string `json:"node_address" validate:"required"`
}

// RegisterResponse returns every node known to the registering node.
type RegisterResponse struct {
	TotalNodes []string `json:"total_nodes"`
}

// EventHandler defines a function that is called when events
// occur in the processing of peer requests.
type EventHandler func(v string, args ...any)

// Client makes the HTTP calls a node uses to find and talk to its peers.
// Every call is best effort. There is no retry.
type Client struct {
	http      *http.Client
	evHandler EventHandler
}

// NewClient constructs a client with the specified request timeout.
func NewClient(timeout time.Duration, evHandler EventHandler) *Client {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		evHandler: ev,
	}
}

// Register asks the node at host to record self as a peer and returns the
// peers that node knows about.
func (c *Client) Register(ctx context.Context, host string, self string) ([]Peer, error) {
	c.evHandler("peer: Register: started: host[%s]", host)
	defer c.evHandler("peer: Register: completed: host[%s]", host)

	url := fmt.Sprintf("%s/register/node", baseURL(host))

	var resp RegisterResponse
	if err := c.send(ctx, http.MethodPost, url, RegisterRequest{NodeAddress: self}, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", host, err)
	}

	peers := make([]Peer, 0, len(resp.TotalNodes))
	for _, node := range resp.TotalNodes {
		peers = append(peers, New(node))
	}

	return peers, nil
}

// Discover registers self with the discovery node and then cross registers
// with every peer it returned. A failure to reach one of those peers is
// logged and skipped. The discovery node is part of the returned peers.
func (c *Client) Discover(ctx context.Context, discoveryHost string, self string) ([]Peer, error) {
	c.evHandler("peer: Discover: started: discovery[%s]", discoveryHost)
	defer c.evHandler("peer: Discover: completed: discovery[%s]", discoveryHost)

	peers, err := c.Register(ctx, discoveryHost, self)
	if err != nil {
		return nil, err
	}

	found := []Peer{New(discoveryHost)}
	for _, pr := range peers {
		if pr.Match(self) || pr.Match(discoveryHost) {
			continue
		}

		if _, err := c.Register(ctx, pr.Host, self); err != nil {
			c.evHandler("peer: Discover: WARNING: %s", err)
			continue
		}

		found = append(found, pr)
	}

	return found, nil
}

// Status asks the peer for its status.
func (c *Client) Status(ctx context.Context, pr Peer) (PeerStatus, error) {
	c.evHandler("peer: Status: started: %s", pr)
	defer c.evHandler("peer: Status: completed: %s", pr)

	url := fmt.Sprintf("%s/node/status", baseURL(pr.Host))

	var ps PeerStatus
	if err := c.send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return PeerStatus{}, fmt.Errorf("%s: %w", pr, err)
	}

	c.evHandler("peer: Status: peer-node[%s]: latest-blkindex[%d]: peer-list[%s]", pr, ps.LatestBlockIndex, ps.KnownPeers)

	return ps, nil
}

// =============================================================================

// baseURL forms the versioned url for a host that may or may not carry
// a scheme.
func baseURL(host string) string {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	return strings.TrimSuffix(host, "/") + "/v1"
}

// send is a helper function to send an HTTP request to a node.
func (c *Client) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(strings.TrimSpace(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
