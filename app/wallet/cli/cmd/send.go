package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

var (
	to    string
	value float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		from, err := loadAddress(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		msg, err := sendTx(url, chain.NewTx(from, to, value))
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(msg)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address or name to send to.")
	sendCmd.Flags().Float64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.MarkFlagRequired("to")
}

// sendTx submits the transaction to the node's pending pool.
func sendTx(url string, tx chain.Tx) (string, error) {
	nr, err := send(http.MethodPost, fmt.Sprintf("%s/v1/tx/add", url), tx)
	if err != nil {
		return "", err
	}

	return nr.Message, nil
}
