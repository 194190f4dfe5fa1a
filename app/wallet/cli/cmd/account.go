package cmd

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/ledger/foundation/keystore"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the address behind every node identity in the keys folder",
	RunE:  accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) error {
	ks, err := keystore.New(keysFolder)
	if err != nil {
		return err
	}

	ids := ks.Copy()

	nodes := make([]string, 0, len(ids))
	for node := range ids {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", node, ids[node])
	}

	return nil
}
