package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the address for the specific wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	address, err := loadAddress(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(address)
}

// loadAddress returns the address of the private key stored in the file.
func loadAddress(path string) (string, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex(), nil
}
