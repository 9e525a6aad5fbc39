// Package cmd contains the wallet app commands.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

const (
	keyExtension = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Path to the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple ledger wallet",
}

// Execute runs the wallet app.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtension) {
		accountName += keyExtension
	}

	return filepath.Join(accountPath, accountName)
}

// =============================================================================

// nodeResponse is the shape of every message the node returns.
type nodeResponse struct {
	Message string            `json:"message"`
	Index   uint64            `json:"index"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any) (nodeResponse, error) {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return nodeResponse{}, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nodeResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nodeResponse{}, err
	}
	defer resp.Body.Close()

	var nr nodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nodeResponse{}, fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if len(nr.Fields) > 0 {
			return nr, fmt.Errorf("%s: %v", nr.Error, nr.Fields)
		}
		return nr, fmt.Errorf("%s", nr.Error)
	}

	return nr, nil
}
