package cmd

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/keystore"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the key pair for a node identity",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	ks, err := keystore.New(keysFolder)
	if err != nil {
		return err
	}

	if err := ks.GenerateKeypair(nodeID); err != nil {
		return err
	}

	addr, err := ks.Address(nodeID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", nodeID, addr)
	return nil
}
