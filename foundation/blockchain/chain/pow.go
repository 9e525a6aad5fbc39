package chain

import (
	"context"
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// POW performs the work of mining to find a nonce for the candidate block
// whose hash solves the difficulty. The search starts at nonce 0 and moves
// up by one, so the same candidate always produces the same answer. There
// is no limit on attempts: an unsolvable difficulty only returns when the
// context is cancelled.
func POW(ctx context.Context, candidate Block, difficulty uint, ev EventHandler) (uint64, string, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("chain: POW: MINING: started: blk[%d]", candidate.Index)
	defer ev("chain: POW: MINING: completed: blk[%d]", candidate.Index)

	for _, tx := range candidate.Transactions {
		ev("chain: POW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for nonce := uint64(0); ; nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("chain: POW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("chain: POW: MINING: CANCELLED")
			return 0, "", ctx.Err()
		}

		candidate.Nonce = nonce
		hash := candidate.ComputeHash()
		if hash == "" {
			return 0, "", errors.New("unable to encode candidate block")
		}

		if !digest.IsSolved(hash, difficulty) {
			continue
		}

		ev("chain: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", candidate.PreviousHash, hash, attempts)

		return nonce, hash, nil
	}
}
