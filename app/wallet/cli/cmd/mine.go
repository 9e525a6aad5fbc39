package cmd

import (
	"fmt"
	"log"
	"net/http"
	neturl "net/url"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask a node to mine its pending transactions for this wallet",
	Run: func(cmd *cobra.Command, args []string) {
		miner, err := loadAddress(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		msg, err := mine(url, miner)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(msg)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

// mine asks the node to mine a block rewarding the specified miner.
func mine(url string, miner string) (string, error) {
	nr, err := send(http.MethodGet, fmt.Sprintf("%s/v1/mine?miner=%s", url, neturl.QueryEscape(miner)), nil)
	if err != nil {
		return "", err
	}

	return nr.Message, nil
}
