package chain

import (
	"fmt"
)

// RewardSender is the sender used for transactions minted by the system
// to pay a miner.
const RewardSender = "0"

// Tx is the transactional information between two parties. Sender and
// recipient are opaque identifiers. Nothing is signed and nothing about
// balances or uniqueness is enforced.
type Tx struct {
	Sender    string  `json:"sender" validate:"required,utf8"`
	Recipient string  `json:"recipient" validate:"required,utf8"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, amount float64) Tx {
	return Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

// NewRewardTx constructs the transaction that pays a miner for a block.
func NewRewardTx(miner string, amount float64) Tx {
	return NewTx(RewardSender, miner, amount)
}

// IsReward reports whether the transaction was minted by the system.
func (tx Tx) IsReward() bool {
	return tx.Sender == RewardSender
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Recipient, tx.Amount)
}
