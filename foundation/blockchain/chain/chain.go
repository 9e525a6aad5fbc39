// Package chain implements the ledger engine: blocks, proof of work, the
// pending transaction pool, and validation of whole chains. Every block
// enters a chain through the same validation gate, whether it was mined
// locally or adopted from a peer.
package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a chain.
type Config struct {
	Genesis   genesis.Genesis
	Clock     func() time.Time
	EvHandler EventHandler
}

// Chain manages the ordered set of blocks and the pending transactions
// waiting to be mined.
type Chain struct {
	difficulty   uint
	miningReward float64
	clock        func() time.Time
	evHandler    EventHandler

	mineMu  sync.Mutex
	mu      sync.RWMutex
	blocks  []Block
	mempool *mempool.Mempool[Tx]
}

// New constructs a chain holding only the genesis block.
func New(cfg Config) (*Chain, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	date := cfg.Genesis.Date
	if date.IsZero() {
		date = genesis.Default().Date
	}

	genesisBlock := NewGenesisBlock(date)
	if err := genesisBlock.ValidateGenesis(); err != nil {
		return nil, fmt.Errorf("genesis block: %w", err)
	}

	c := Chain{
		difficulty:   cfg.Genesis.Difficulty,
		miningReward: cfg.Genesis.MiningReward,
		clock:        clock,
		evHandler:    ev,
		blocks:       []Block{genesisBlock},
		mempool:      mempool.New[Tx](),
	}

	return &c, nil
}

// Difficulty returns the number of leading zero nibbles a block needs.
func (c *Chain) Difficulty() uint {
	return c.difficulty
}

// =============================================================================

// AddTransaction appends the transaction to the pending pool and returns the
// number of pending transactions.
func (c *Chain) AddTransaction(tx Tx) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.mempool.Add(tx)
	c.evHandler("chain: AddTransaction: tx[%s]: pending[%d]", tx, n)

	return n
}

// Pending returns a copy of the transactions waiting to be mined.
func (c *Chain) Pending() []Tx {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.mempool.Copy()
}

// Mine builds the next block from every pending transaction and searches for
// its proof of work. If a miner is specified a reward transaction for it is
// appended as the last transaction of the block. The reward is added to the
// candidate block only and never enters the pending pool. The bool return
// is false when there is nothing to mine or the chain moved while searching;
// in both cases the pool is left as it was. The error is only set when the
// search was cancelled.
func (c *Chain) Mine(ctx context.Context, miner string) (Block, bool, error) {
	c.mineMu.Lock()
	defer c.mineMu.Unlock()

	c.evHandler("chain: Mine: MINING: check mempool count")

	c.mu.Lock()
	if c.mempool.Count() == 0 {
		c.mu.Unlock()
		c.evHandler("chain: Mine: MINING: no transactions to mine")
		return Block{}, false, nil
	}

	pending := c.mempool.Copy()
	latest := c.blocks[len(c.blocks)-1]
	c.mu.Unlock()

	// The reward is part of the candidate only, never the pool.
	trans := pending
	if miner != "" {
		trans = append(trans, NewRewardTx(miner, c.miningReward))
	}

	nb := Block{
		Index:        latest.Index + 1,
		Transactions: trans,
		Timestamp:    toTimestamp(c.clock()),
		PreviousHash: latest.Hash,
	}

	c.evHandler("chain: Mine: MINING: perform POW: blk[%d]: txs[%d]", nb.Index, len(trans))

	nonce, hash, err := POW(ctx, nb, c.difficulty, c.evHandler)
	if err != nil {
		return Block{}, false, err
	}
	nb.Nonce = nonce

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.appendBlock(nb, hash); err != nil {
		c.evHandler("chain: Mine: MINING: WARNING: block not appended: %s", err)
		return Block{}, false, nil
	}

	// Only the transactions that were mined leave the pool. Anything
	// submitted during the search stays pending.
	c.mempool.Drop(len(pending))

	c.evHandler("chain: Mine: MINING: blk[%d] appended: hash[%s]", nb.Index, hash)

	return c.blocks[len(c.blocks)-1].clone(), true, nil
}

// AppendBlock validates the block against the latest block using the claimed
// hash and, if that passes, stores the block with that hash.
func (c *Chain) AppendBlock(block Block, claimedHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.appendBlock(block, claimedHash); err != nil {
		c.evHandler("chain: AppendBlock: WARNING: blk[%d] rejected: %s", block.Index, err)
		return false
	}

	return true
}

// appendBlock is the single gate every block goes through to join the
// chain. The caller must hold the write lock.
func (c *Chain) appendBlock(block Block, claimedHash string) error {
	block = block.clone()
	block.Hash = claimedHash

	if err := block.ValidateBlock(c.blocks[len(c.blocks)-1], c.difficulty); err != nil {
		return err
	}

	c.blocks = append(c.blocks, block)

	return nil
}

// =============================================================================

// IsValid reports whether the live chain passes full validation.
func (c *Chain) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := ValidateChain(c.blocks, c.difficulty); err != nil {
		c.evHandler("chain: IsValid: WARNING: %s", err)
		return false
	}

	return true
}

// IsValidChain reports whether the specified blocks form a valid chain at
// this chain's difficulty. Neither chain is changed.
func (c *Chain) IsValidChain(blocks []Block) bool {
	if err := ValidateChain(blocks, c.difficulty); err != nil {
		c.evHandler("chain: IsValidChain: WARNING: %s", err)
		return false
	}

	return true
}

// ValidateChain walks the blocks checking the genesis block and then every
// adjacent pair with the same checks used to append a block.
func ValidateChain(blocks []Block, difficulty uint) error {
	if len(blocks) == 0 {
		return errors.New("chain has no blocks")
	}

	if err := blocks[0].ValidateGenesis(); err != nil {
		return err
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], difficulty); err != nil {
			return fmt.Errorf("blk[%d]: %w", i, err)
		}
	}

	return nil
}

// Replace swaps the whole chain for the specified blocks if they are valid
// and strictly longer than the current chain. The pending pool is untouched.
func (c *Chain) Replace(blocks []Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(blocks) <= len(c.blocks) {
		c.evHandler("chain: Replace: candidate length[%d] not longer than ours[%d]", len(blocks), len(c.blocks))
		return false
	}

	if err := ValidateChain(blocks, c.difficulty); err != nil {
		c.evHandler("chain: Replace: WARNING: candidate invalid: %s", err)
		return false
	}

	c.blocks = cloneBlocks(blocks)

	c.evHandler("chain: Replace: chain replaced: length[%d]: latest[%s]", len(c.blocks), c.blocks[len(c.blocks)-1].Hash)

	return true
}

// =============================================================================

// Blocks returns a copy of the blocks in the chain.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return cloneBlocks(c.blocks)
}

// LatestBlock returns the last block in the chain.
func (c *Chain) LatestBlock() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1].clone()
}

// Length returns the number of blocks in the chain, genesis included.
func (c *Chain) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// cloneBlocks copies the blocks so callers can't reach the chain's memory.
func cloneBlocks(blocks []Block) []Block {
	cpy := make([]Block, len(blocks))
	for i, block := range blocks {
		cpy[i] = block.clone()
	}
	return cpy
}
