// Package pow implements the proof of work search that seals a block. The
// nonce space is split across a set of goroutines that race to find a hash
// solving the difficulty.
package pow

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrMiningTimeout is returned when no solution is found before the mining
// timeout. The operation can be retried.
var ErrMiningTimeout = errors.New("mining timed out")

// maxDifficulty is the number of hex digits in a block hash.
const maxDifficulty = 64

// checkEvery is how many attempts a goroutine makes between checks for
// cancellation.
const checkEvery = 1 << 12

// EventHandler defines a function that is called when events
// occur in the processing of mining.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a miner.
type Config struct {
	Workers   int
	Timeout   time.Duration
	EvHandler EventHandler
}

// POW searches for the nonce that solves a block. This implements the
// database.Miner interface.
type POW struct {
	workers   int
	timeout   time.Duration
	evHandler EventHandler
}

// New constructs a miner. A zero Workers value uses one goroutine per CPU
// and a zero Timeout mines until the context is cancelled.
func New(cfg Config) *POW {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &POW{
		workers:   workers,
		timeout:   cfg.Timeout,
		evHandler: ev,
	}
}

// solution is the nonce and hash found by one of the goroutines.
type solution struct {
	nonce uint64
	hash  string
}

// Mine does the work of finding a nonce that produces a block hash with
// difficulty leading zeros. On success the block's Nonce, CurrentHash and
// Difficulty fields are set.
func (p *POW) Mine(ctx context.Context, b *database.Block, difficulty uint) error {
	if difficulty > maxDifficulty {
		return fmt.Errorf("difficulty %d is greater than %d", difficulty, maxDifficulty)
	}

	hashFn, err := b.HashFunc()
	if err != nil {
		return fmt.Errorf("preparing block hash: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.evHandler("pow: Mine: MINING: started: blk[%d]: workers[%d]", b.Index, p.workers)
	defer p.evHandler("pow: Mine: MINING: completed: blk[%d]", b.Index)

	if ctx.Err() != nil {
		return p.cancelled(ctx)
	}

	// Choose a random starting point for the nonce. After this, each
	// goroutine moves through its own interleaved slice of the nonce space.
	nBig, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return err
	}
	start := nBig.Uint64()

	var attempts atomic.Uint64
	found := make(chan solution, p.workers)

	var wg sync.WaitGroup
	wg.Add(p.workers)

	for w := 0; w < p.workers; w++ {
		go func(offset uint64) {
			defer wg.Done()

			step := uint64(p.workers)
			nonce := start + offset

			for n := uint64(1); ; n++ {
				if n%checkEvery == 0 {
					attempts.Add(checkEvery)
					if ctx.Err() != nil {
						return
					}
				}

				hash := hashFn(nonce)
				if database.IsHashSolved(difficulty, hash) {
					found <- solution{nonce: nonce, hash: hash}
					cancel()
					return
				}

				nonce += step
			}
		}(uint64(w))
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	sol, ok := <-found
	if !ok {
		return p.cancelled(ctx)
	}

	b.Nonce = sol.nonce
	b.CurrentHash = sol.hash
	b.Difficulty = difficulty

	p.evHandler("pow: Mine: MINING: SOLVED: blk[%d]: prevBlk[%s]: newBlk[%s]", b.Index, b.PreviousHash, sol.hash)
	p.evHandler("pow: Mine: MINING: attempts[%d]", attempts.Load())

	return nil
}

// cancelled maps the context error to the error returned by Mine.
func (p *POW) cancelled(ctx context.Context) error {
	p.evHandler("pow: Mine: MINING: CANCELLED")

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrMiningTimeout
	}

	return ctx.Err()
}
