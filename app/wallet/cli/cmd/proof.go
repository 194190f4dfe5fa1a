package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

var (
	blockIndex uint64
	txID       string
)

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Fetch and check the merkle proof that a transaction is in a block",
	RunE:  proofRun,
}

func init() {
	rootCmd.AddCommand(proofCmd)
	proofCmd.Flags().Uint64VarP(&blockIndex, "block", "b", 0, "Index of the block holding the transaction.")
	proofCmd.Flags().StringVarP(&txID, "id", "i", "", "Id of the transaction.")
	proofCmd.MarkFlagRequired("id")
}

func proofRun(cmd *cobra.Command, args []string) error {
	var proof state.TxProof
	if err := send(http.MethodGet, fmt.Sprintf("/v1/tx/proof/%d/%s", blockIndex, txID), nil, &proof); err != nil {
		return err
	}

	if !proof.Verify() {
		return errors.New("proof does not match the block's merkle root")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s is in block[%d] with root %s\n", txID, proof.BlockIndex, proof.TransRoot)
	return nil
}
