package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// defaultPeerTimeout bounds a single request to a peer when no timeout
// was configured.
const defaultPeerTimeout = 5 * time.Second

// HTTPFetcher retrieves chains from peers over their private API.
type HTTPFetcher struct {
	client http.Client
}

// NewHTTPFetcher constructs a fetcher whose requests give up after the
// specified timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultPeerTimeout
	}

	return &HTTPFetcher{
		client: http.Client{Timeout: timeout},
	}
}

// FetchChain implements the consensus.Fetcher interface.
func (f *HTTPFetcher) FetchChain(ctx context.Context, pr peer.Peer) (chain.ChainData, error) {
	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var cd chain.ChainData
	if err := f.send(ctx, http.MethodGet, url, nil, &cd); err != nil {
		return chain.ChainData{}, fmt.Errorf("%s: %w", pr.Host, err)
	}

	return cd, nil
}

// FetchStatus asks the peer for its latest block and the peers it knows.
func (f *HTTPFetcher) FetchStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := f.send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, fmt.Errorf("%s: %w", pr.Host, err)
	}

	return ps, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func (f *HTTPFetcher) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
