// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// KeyStore interface represents the behavior required to manage the key
// pair of the node identity that signs transactions.
type KeyStore interface {
	GenerateKeypair(nodeID string) error
	database.Signer
	database.Verifier
}

// =============================================================================

// Config represents the configuration required to start
// the ledger.
type Config struct {
	MinerAccount database.AccountID
	NodeID       string
	Host         string
	Genesis      genesis.Genesis
	KeyStore     KeyStore
	Miner        database.Miner
	Storage      database.Storage
	KnownPeers   *peer.PeerSet
	EvHandler    EventHandler
}

// State manages the chain, the pool of pending transactions and the mining
// of new blocks.
type State struct {
	minerAccount database.AccountID
	nodeID       string
	host         string
	evHandler    EventHandler
	genesis      genesis.Genesis

	keyStore   KeyStore
	miner      database.Miner
	storage    database.Storage
	knownPeers *peer.PeerSet

	mu       sync.RWMutex
	chain    []database.Block
	mempool  *mempool.Mempool
	miningMu sync.Mutex

	Worker Worker
}

// New constructs the ledger and seals its genesis block.
func New(cfg Config) (*State, error) {
	if cfg.MinerAccount == "" {
		return nil, errors.New("miner account is required")
	}
	if cfg.NodeID == "" {
		return nil, errors.New("node id is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if cfg.KeyStore == nil {
		return nil, errors.New("key store is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis.WithDefaults()
	if err := gen.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	miner := cfg.Miner
	if miner == nil {
		miner = pow.New(pow.Config{EvHandler: pow.EventHandler(ev)})
	}

	strg := cfg.Storage
	if strg == nil {
		strg = memory.New()
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// The node identity signs every transaction this ledger creates.
	if err := cfg.KeyStore.GenerateKeypair(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("generating key pair: %w", err)
	}

	// The journal only covers the lifetime of this process.
	if err := strg.Reset(); err != nil {
		return nil, fmt.Errorf("resetting storage: %w", err)
	}

	s := State{
		minerAccount: cfg.MinerAccount,
		nodeID:       cfg.NodeID,
		host:         cfg.Host,
		evHandler:    ev,
		genesis:      gen,
		keyStore:     cfg.KeyStore,
		miner:        miner,
		storage:      strg,
		knownPeers:   knownPeers,
		mempool:      mempool.New(),
	}

	block, err := s.genesisBlock()
	if err != nil {
		return nil, err
	}

	if err := strg.Write(block); err != nil {
		return nil, fmt.Errorf("writing genesis: %w", err)
	}
	s.chain = []database.Block{block}

	ev("state: New: genesis sealed: blk[%s]", block.CurrentHash)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &s, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all ledger writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.storage.Close()
}

// =============================================================================

// genesisBlock builds the first block of the chain. It holds one zero value
// transaction from the system account with no real recipient.
func (s *State) genesisBlock() (database.Block, error) {
	tx, err := database.NewTransaction(s.keyStore, s.nodeID, database.SystemAccount, database.NoRecipient, 0)
	if err != nil {
		return database.Block{}, fmt.Errorf("genesis transaction: %w", err)
	}

	block, err := database.NewBlock(s.keyStore, now(), []database.Transaction{tx}, 0)
	if err != nil {
		return database.Block{}, fmt.Errorf("genesis block: %w", err)
	}

	block.PreviousHash = database.GenesisPrevHash
	block.CurrentHash = block.ComputeHash()

	return block, nil
}

// snapshot returns the chain as it is right now. Blocks are never changed
// once appended so the returned slice can be read without the lock.
func (s *State) snapshot() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.chain)
	return s.chain[:n:n]
}

// now returns the current time in unix milliseconds.
func now() uint64 {
	return uint64(time.Now().UTC().UnixMilli())
}
