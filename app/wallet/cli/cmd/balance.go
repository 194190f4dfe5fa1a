package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var account string

type balance struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Accounts    []balance `json:"accounts"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance for an account or every account.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&account, "account", "a", "", "Account to print, empty for all.")
}

func balanceRun(cmd *cobra.Command, args []string) error {
	path := "/v1/accounts/list"
	if account != "" {
		path += "/" + account
	}

	var bals balances
	if err := send(http.MethodGet, path, nil, &bals); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "LatestBlock: %s  Uncommitted: %d\n\n", bals.LatestBlock, bals.Uncommitted)
	for _, bal := range bals.Accounts {
		fmt.Fprintf(out, "Account: %q  Balance: %d\n", bal.Account, bal.Balance)
	}

	return nil
}
