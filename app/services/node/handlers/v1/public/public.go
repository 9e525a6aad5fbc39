// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Chain returns the full chain held by this node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	ci := chainInfo{
		Length: len(blocks),
		Chain:  blocks,
	}

	return web.Respond(ctx, w, ci, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	tran := chain.NewTx(ntx.Sender, ntx.Recipient, *ntx.Amount)

	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tran.Sender, "recipient", tran.Recipient, "amount", tran.Amount)

	if _, err := h.State.SubmitTransaction(tran); err != nil {
		return err
	}

	return web.Respond(ctx, w, message{Message: "Transaction added successfully"}, http.StatusCreated)
}

// Mempool returns the set of transactions waiting to be mined. If an
// account is specified only its transactions are returned.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")
	if address, exists := h.NS.Address(acct); exists {
		acct = address
	}

	pending := h.State.RetrieveMempool()

	trans := make([]tx, 0, len(pending))
	for _, tran := range pending {
		if acct != "" && acct != tran.Sender && acct != tran.Recipient {
			continue
		}

		trans = append(trans, tx{
			Sender:        tran.Sender,
			SenderName:    h.NS.Lookup(tran.Sender),
			Recipient:     tran.Recipient,
			RecipientName: h.NS.Lookup(tran.Recipient),
			Amount:        tran.Amount,
		})
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Mine mines every pending transaction into a new block and rewards the
// specified miner. The miner can be an address or a name known to the
// name service. Without a miner the node's own miner is rewarded.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	miner := r.URL.Query().Get("miner")
	switch address, exists := h.NS.Address(miner); {
	case exists:
		miner = address
	case miner == "":
		miner = h.State.RetrieveMinerAddress()
	}

	// A client that goes away must not abandon the search half way.
	block, err := h.State.MineNewBlock(context.WithoutCancel(ctx), miner)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return web.Respond(ctx, w, message{Message: "No transactions to mine"}, http.StatusOK)
		case errors.Is(err, state.ErrChainMoved):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("mining: %w", err)
	}

	resp := mined{
		Message: fmt.Sprintf("Block #%d has been mined.", block.Index),
		Index:   block.Index,
		Hash:    block.Hash,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ValidateChain reports whether the chain held by this node is valid.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validity{
		Valid:   h.State.IsChainValid(),
		Message: "Blockchain is valid.",
	}
	if !resp.Valid {
		resp.Message = "Blockchain is invalid!"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNode adds a peer node to the registry.
func (h Handlers) RegisterNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np newPeer
	if err := web.Decode(r, &np); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(np); err != nil {
		return err
	}

	if _, _, err := h.State.RegisterPeer(np.Address); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	peers := h.State.RetrieveKnownPeers()
	hosts := make([]string, len(peers))
	for i, pr := range peers {
		hosts[i] = pr.Host
	}

	resp := registered{
		Message:    "Node registered successfully",
		TotalNodes: hosts,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ResolveConflicts replaces this node's chain with the longest valid chain
// held by the registered peers.
func (h Handlers) ResolveConflicts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := resolved{
		Replaced: h.State.ResolveConflicts(ctx),
		Message:  "Our chain is authoritative.",
	}
	if resp.Replaced {
		resp.Message = "Our chain was replaced."
	}
	resp.Chain = h.State.RetrieveChain()

	return web.Respond(ctx, w, resp, http.StatusOK)
}
