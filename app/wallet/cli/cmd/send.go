package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount int64
)

type newTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type submitted struct {
	Transaction    database.Transaction `json:"transaction"`
	MiningSignaled bool                 `json:"mining_signaled"`
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Account sending the value, empty to mint.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the value.")
	sendCmd.Flags().Int64VarP(&amount, "amount", "v", 0, "Value to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	var resp submitted
	if err := send(http.MethodPost, "/v1/tx/submit", newTx{From: from, To: to, Amount: amount}, &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Transaction:", resp.Transaction)
	if resp.MiningSignaled {
		fmt.Fprintln(cmd.OutOrStdout(), "Pool is full, mining signaled")
	}

	return nil
}
