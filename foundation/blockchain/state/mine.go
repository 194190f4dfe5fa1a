package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Set of error variables for mining.
var (
	ErrNoTransactions = errors.New("no transactions in mempool")
	ErrChainChanged   = errors.New("chain changed while mining")
)

// MinePendingTransactions takes every transaction in the pool, seals them
// into the next block and appends that block to the chain. A reward for the
// miner account is then left in the pool for the next block. If mining
// fails the transactions are put back in the pool.
func (s *State) MinePendingTransactions(ctx context.Context) (database.Block, error) {
	return s.minePending(ctx, false)
}

// minePending performs the mining run. When fullOnly is set the pool is
// only drained if it still holds a full batch once this caller owns the
// mining lock, otherwise ErrNoTransactions is returned.
func (s *State) minePending(ctx context.Context, fullOnly bool) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.evHandler("state: MinePendingTransactions: MINING: started")
	defer s.evHandler("state: MinePendingTransactions: MINING: completed")

	trans, latest := s.drain(fullOnly)
	if len(trans) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	block, err := s.mineBlock(ctx, latest, trans)
	if err != nil {
		s.restore(trans, err)
		return database.Block{}, err
	}

	if err := s.appendBlock(latest, block); err != nil {
		s.restore(trans, err)
		return database.Block{}, err
	}

	s.evHandler("viewer: newBlock: blk[%d]: hash[%s]: prev[%s]: txs[%d]", block.Index, block.CurrentHash, block.PreviousHash, len(block.Transactions))

	return block, nil
}

// =============================================================================

// drain takes the transactions by value so the pool can keep accepting new
// transactions while the block is mined. The count and the drain happen
// under one lock so a batch mined by an earlier caller is not mined twice.
func (s *State) drain(fullOnly bool) ([]database.Transaction, database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.chain[len(s.chain)-1]

	if n := s.mempool.Count(); fullOnly && n < int(s.genesis.TransPerBlock) {
		s.evHandler("state: drain: MINING: pool below trigger: txs[%d]", n)
		return nil, latest
	}

	return s.mempool.Drain(), latest
}

// restore puts the transactions of a failed mining run back in the pool. The
// worker is signaled when they still make up a full batch.
func (s *State) restore(trans []database.Transaction, err error) {
	s.evHandler("state: MinePendingTransactions: MINING: restoring txs[%d]: %s", len(trans), err)
	s.mempool.Restore(trans)

	if s.Worker != nil && s.mempool.Count() >= int(s.genesis.TransPerBlock) {
		s.evHandler("state: MinePendingTransactions: MINING: signal new mining operation")
		s.Worker.SignalStartMining()
	}
}

// mineBlock builds the block that follows latest and performs the proof of
// work for it.
func (s *State) mineBlock(ctx context.Context, latest database.Block, trans []database.Transaction) (database.Block, error) {
	block, err := database.NewBlock(s.keyStore, now(), trans, latest.Index+1)
	if err != nil {
		return database.Block{}, err
	}
	block.PreviousHash = latest.CurrentHash

	for _, tx := range block.Transactions {
		s.evHandler("state: mineBlock: MINING: blk[%d]: tx[%s]", block.Index, tx)
	}

	if err := block.Mine(ctx, s.miner, uint(s.genesis.Difficulty)); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// appendBlock adds the mined block to the chain and the journal and then
// pools the mining reward. The reward never triggers mining.
func (s *State) appendBlock(latest database.Block, block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tip := s.chain[len(s.chain)-1]; tip.CurrentHash != latest.CurrentHash {
		return fmt.Errorf("%w: tip[%s]: mined on[%s]", ErrChainChanged, tip.CurrentHash, latest.CurrentHash)
	}

	if err := s.storage.Write(block); err != nil {
		return fmt.Errorf("writing block: %w", err)
	}
	s.chain = append(s.chain, block)

	reward, err := database.NewTransaction(s.keyStore, s.nodeID, database.SystemAccount, s.minerAccount, s.genesis.MiningReward)
	if err != nil {
		s.evHandler("state: appendBlock: WARNING: mining reward: %s", err)
		return nil
	}

	if _, err := s.mempool.Add(reward); err != nil {
		s.evHandler("state: appendBlock: WARNING: mining reward: %s", err)
	}

	return nil
}
