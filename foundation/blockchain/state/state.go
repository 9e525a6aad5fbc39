// Package state is the core API for the ledger node and implements all the
// business rules and processing that sit on top of the chain.
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of the node.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining and peer updates.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalResolve()
}

// Fetcher represents the behavior required to query peers over the network.
type Fetcher interface {
	consensus.Fetcher
	FetchStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error)
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	MinerAddress string
	Host         string
	Genesis      genesis.Genesis
	KnownPeers   *peer.PeerSet
	Fetcher      Fetcher
	PeerTimeout  time.Duration
	Clock        func() time.Time
	EvHandler    EventHandler
}

// State manages the chain, the known peers, and conflict resolution.
type State struct {
	minerAddress string
	host         string
	genesis      genesis.Genesis
	evHandler    EventHandler

	knownPeers *peer.PeerSet
	fetcher    Fetcher
	chain      *chain.Chain

	Worker Worker
}

// New constructs a new node state holding only the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(cfg.PeerTimeout)
	}

	ch, err := chain.New(chain.Config{
		Genesis:   cfg.Genesis,
		Clock:     cfg.Clock,
		EvHandler: chain.EventHandler(ev),
	})
	if err != nil {
		return nil, fmt.Errorf("constructing chain: %w", err)
	}

	state := State{
		minerAddress: cfg.MinerAddress,
		host:         cfg.Host,
		genesis:      cfg.Genesis,
		evHandler:    ev,

		knownPeers: knownPeers,
		fetcher:    fetcher,
		chain:      ch,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all background mining and peer activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
