package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/validate"
)

// Set of errors returned by the mining and transaction API.
var (
	ErrNoTransactions = errors.New("no transactions to mine")
	ErrChainMoved     = errors.New("chain changed while mining, try again")
)

// SubmitTransaction validates the transaction and adds it to the pending
// pool. It returns the number of pending transactions.
func (s *State) SubmitTransaction(tx chain.Tx) (int, error) {
	if err := validate.Check(tx); err != nil {
		return 0, err
	}

	n := s.chain.AddTransaction(tx)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return n, nil
}

// MineNewBlock mines every pending transaction into a new block. An empty
// miner mines the block without a reward transaction.
func (s *State) MineNewBlock(ctx context.Context, miner string) (chain.Block, error) {
	s.evHandler("state: MineNewBlock: started: miner[%s]", miner)
	defer s.evHandler("state: MineNewBlock: completed")

	block, mined, err := s.chain.Mine(ctx, miner)
	if err != nil {
		return chain.Block{}, err
	}

	if !mined {
		if len(s.chain.Pending()) == 0 {
			return chain.Block{}, ErrNoTransactions
		}
		return chain.Block{}, ErrChainMoved
	}

	s.evHandler("viewer: block mined: blk[%d]: hash[%s]: txs[%d]", block.Index, block.Hash, len(block.Transactions))

	return block, nil
}
