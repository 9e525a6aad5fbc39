package public

import "github.com/ardanlabs/ledger/foundation/blockchain/chain"

type newTx struct {
	Sender    string   `json:"sender" validate:"required,utf8"`
	Recipient string   `json:"recipient" validate:"required,utf8"`
	Amount    *float64 `json:"amount" validate:"required,gte=0"`
}

type tx struct {
	Sender        string  `json:"sender"`
	SenderName    string  `json:"sender_name"`
	Recipient     string  `json:"recipient"`
	RecipientName string  `json:"recipient_name"`
	Amount        float64 `json:"amount"`
}

type newPeer struct {
	Address string `json:"address" validate:"required"`
}

type chainInfo struct {
	Length int           `json:"length"`
	Chain  []chain.Block `json:"chain"`
}

type mined struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
	Hash    string `json:"hash"`
}

type message struct {
	Message string `json:"message"`
}

type validity struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type registered struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

type resolved struct {
	Replaced bool          `json:"replaced"`
	Message  string        `json:"message"`
	Chain    []chain.Block `json:"chain"`
}
