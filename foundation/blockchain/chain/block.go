package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/validate"
)

// ErrStalePrevious is returned when a block doesn't build on the block it
// is being validated against.
var ErrStalePrevious = errors.New("previous hash doesn't match the previous block")

// =============================================================================

// Block represents a group of transactions batched together. A block is
// never changed once it is part of a chain.
type Block struct {
	Index        uint64  `json:"index"`
	Transactions []Tx    `json:"transactions"`
	Timestamp    float64 `json:"timestamp"`
	PreviousHash string  `json:"previous_hash"`
	Nonce        uint64  `json:"nonce"`
	Hash         string  `json:"hash"` // Claimed digest. Consumers recompute it, never trust it.
}

// blockFields is the set of fields covered by the block digest. The stored
// hash is not part of it.
type blockFields struct {
	Index        uint64  `json:"index"`
	Transactions []Tx    `json:"transactions"`
	Timestamp    float64 `json:"timestamp"`
	PreviousHash string  `json:"previous_hash"`
	Nonce        uint64  `json:"nonce"`
}

// NewGenesisBlock constructs block 0 for the specified genesis date. It is
// not mined, its hash only needs to match its own fields.
func NewGenesisBlock(date time.Time) Block {
	b := Block{
		Index:        0,
		Transactions: []Tx{},
		Timestamp:    toTimestamp(date),
		PreviousHash: digest.ZeroHash,
		Nonce:        0,
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash returns the digest of the block's fields with the current
// nonce. If the fields can't be encoded an empty string is returned, which
// never matches a stored hash and never satisfies any difficulty.
func (b Block) ComputeHash() string {
	trans := b.Transactions
	if trans == nil {
		trans = []Tx{}
	}

	hash, err := digest.Hash(blockFields{
		Index:        b.Index,
		Transactions: trans,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		Nonce:        b.Nonce,
	})
	if err != nil {
		return ""
	}

	return hash
}

// ValidateGenesis checks the block can serve as block 0 of a chain.
func (b Block) ValidateGenesis() error {
	if b.Index != 0 {
		return fmt.Errorf("genesis block has index %d", b.Index)
	}

	if b.PreviousHash != digest.ZeroHash {
		return fmt.Errorf("genesis block previous hash is %s, exp %s", b.PreviousHash, digest.ZeroHash)
	}

	if len(b.Transactions) != 0 {
		return fmt.Errorf("genesis block holds %d transactions", len(b.Transactions))
	}

	if hash := b.ComputeHash(); b.Hash != hash {
		return fmt.Errorf("genesis block hash doesn't match its fields, got %s, exp %s", b.Hash, hash)
	}

	return nil
}

// ValidateBlock takes a block and validates it to be the next block after
// the specified previous block.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint) error {
	if b.PreviousHash != previousBlock.Hash {
		return fmt.Errorf("%w, got %s, exp %s", ErrStalePrevious, b.PreviousHash, previousBlock.Hash)
	}

	if nextIndex := previousBlock.Index + 1; b.Index != nextIndex {
		return fmt.Errorf("this block is not the next index, got %d, exp %d", b.Index, nextIndex)
	}

	if !digest.IsSolved(b.Hash, difficulty) {
		return fmt.Errorf("block hash %s does not solve difficulty %d", b.Hash, difficulty)
	}

	if hash := b.ComputeHash(); b.Hash != hash {
		return fmt.Errorf("block hash doesn't match its fields, got %s, exp %s", b.Hash, hash)
	}

	return nil
}

// clone returns a copy of the block that shares no memory with the original.
func (b Block) clone() Block {
	if b.Transactions != nil {
		trans := make([]Tx, len(b.Transactions))
		copy(trans, b.Transactions)
		b.Transactions = trans
	}
	return b
}

// toTimestamp converts a time into fractional unix seconds.
func toTimestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// =============================================================================

// BlockData represents a block record received from outside the node. The
// pointer fields let validation tell a missing field from a zero value.
type BlockData struct {
	Index        *uint64  `json:"index" validate:"required"`
	Transactions []Tx     `json:"transactions" validate:"dive"`
	Timestamp    *float64 `json:"timestamp" validate:"required,gte=0"`
	PreviousHash string   `json:"previous_hash" validate:"required,len=66,hexadecimal"`
	Nonce        *uint64  `json:"nonce" validate:"required"`
	Hash         string   `json:"hash" validate:"required,len=66,hexadecimal"`
}

// ChainData represents what a node serves to its peers.
type ChainData struct {
	Length int         `json:"length"`
	Chain  []BlockData `json:"chain"`
}

// NewBlockData constructs the record form of a block.
func NewBlockData(block Block) BlockData {
	index := block.Index
	timestamp := block.Timestamp
	nonce := block.Nonce

	return BlockData{
		Index:        &index,
		Transactions: block.Transactions,
		Timestamp:    &timestamp,
		PreviousHash: block.PreviousHash,
		Nonce:        &nonce,
		Hash:         block.Hash,
	}
}

// ToBlock validates the structure of a record and converts it into a block.
// The result still has to pass chain validation before it can be trusted.
func ToBlock(blockData BlockData) (Block, error) {
	if err := validate.Check(blockData); err != nil {
		return Block{}, err
	}

	block := Block{
		Index:        *blockData.Index,
		Transactions: blockData.Transactions,
		Timestamp:    *blockData.Timestamp,
		PreviousHash: blockData.PreviousHash,
		Nonce:        *blockData.Nonce,
		Hash:         blockData.Hash,
	}

	return block.clone(), nil
}

// ToBlocks converts a sequence of records into blocks, failing on the
// first malformed record.
func ToBlocks(records []BlockData) ([]Block, error) {
	blocks := make([]Block, len(records))
	for i, record := range records {
		block, err := ToBlock(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		blocks[i] = block
	}

	return blocks, nil
}
