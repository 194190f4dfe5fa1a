// Package genesis maintains access to the parameters a chain is started with.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time `json:"date"`
	ChainID       uint16    `json:"chain_id"`        // The chain id represents an unique id for this running instance.
	TransPerBlock uint16    `json:"trans_per_block"` // The number of pending transactions that triggers mining.
	Difficulty    uint16    `json:"difficulty"`      // How difficult it needs to be to solve the work problem.
	MiningReward  int64     `json:"mining_reward"`   // Reward for mining a block.
}

// Default returns the parameters used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:          time.Now().UTC(),
		ChainID:       1,
		TransPerBlock: 3,
		Difficulty:    2,
		MiningReward:  100,
	}
}

// WithDefaults returns a copy of the genesis where every unset parameter
// takes the value from Default.
func (g Genesis) WithDefaults() Genesis {
	def := Default()

	if g.Date.IsZero() {
		g.Date = def.Date
	}
	if g.ChainID == 0 {
		g.ChainID = def.ChainID
	}
	if g.TransPerBlock == 0 {
		g.TransPerBlock = def.TransPerBlock
	}
	if g.Difficulty == 0 {
		g.Difficulty = def.Difficulty
	}
	if g.MiningReward == 0 {
		g.MiningReward = def.MiningReward
	}

	return g
}

// Load opens and consumes the genesis file. Values missing from the file
// keep their defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the parameters can run a chain.
func (g Genesis) Validate() error {
	if g.TransPerBlock == 0 {
		return errors.New("trans_per_block must be at least 1")
	}

	if g.Difficulty > 64 {
		return fmt.Errorf("difficulty %d is greater than 64", g.Difficulty)
	}

	if g.MiningReward < 0 {
		return fmt.Errorf("mining_reward %d is negative", g.MiningReward)
	}

	return nil
}
