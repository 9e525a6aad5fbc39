// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Defaults used when no genesis file is provided.
const (
	DefaultDifficulty   = 4
	DefaultMiningReward = 100
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`          // The timestamp of block 0. Every node must share it.
	Difficulty   uint      `json:"difficulty"`    // Number of leading zero hex nibbles a block hash needs.
	MiningReward float64   `json:"mining_reward"` // Amount paid by the "0" sender to a miner for a block.
}

// Default returns the genesis values used when no file is configured.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   DefaultDifficulty,
		MiningReward: DefaultMiningReward,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default genesis.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	if genesis.MiningReward < 0 {
		return Genesis{}, fmt.Errorf("mining reward must not be negative, got %v", genesis.MiningReward)
	}

	return genesis, nil
}
