// Package cmd contains the wallet app for talking to a ledger node.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	nodeID     string
	keysFolder string
	url        string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeID, "node", "n", "node1", "Identity of the node that signs transactions.")
	rootCmd.PersistentFlags().StringVarP(&keysFolder, "keys-folder", "k", "zblock/keys/", "Path to the directory with node keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Your simple ledger wallet",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
