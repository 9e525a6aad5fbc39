package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveMinerAddress returns the address credited when the node mines
// without being told who the miner is.
func (s *State) RetrieveMinerAddress() string {
	return s.minerAddress
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of every block in the chain.
func (s *State) RetrieveChain() []chain.Block {
	return s.chain.Blocks()
}

// RetrieveChainData returns the chain in the form served to peers.
func (s *State) RetrieveChainData() chain.ChainData {
	blocks := s.chain.Blocks()

	records := make([]chain.BlockData, len(blocks))
	for i, block := range blocks {
		records[i] = chain.NewBlockData(block)
	}

	return chain.ChainData{
		Length: len(records),
		Chain:  records,
	}
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() chain.Block {
	return s.chain.LatestBlock()
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []chain.Tx {
	return s.chain.Pending()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveStatus returns the status of this node as reported to peers.
func (s *State) RetrieveStatus() peer.PeerStatus {
	latest := s.chain.LatestBlock()

	return peer.PeerStatus{
		LatestBlockHash:  latest.Hash,
		LatestBlockIndex: latest.Index,
		KnownPeers:       s.RetrieveKnownPeers(),
	}
}

// IsChainValid reports whether the live chain passes full validation.
func (s *State) IsChainValid() bool {
	return s.chain.IsValid()
}
