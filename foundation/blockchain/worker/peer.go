package worker

// peerOperations handles finding new peers and resolving conflicts.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.resolve:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.ctx.Done():
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list and then adopts the longest valid
// chain in the network.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {
		if _, err := w.state.NetRequestPeerStatus(w.ctx, pr); err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
		}
	}

	if w.state.ResolveConflicts(w.ctx) {

		// Whatever is being mined now builds on a block that is gone.
		w.SignalCancelMining()
		w.SignalStartMining()
	}
}
