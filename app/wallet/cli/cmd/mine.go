package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine its pending transactions now",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) error {
	if err := send(http.MethodPost, "/v1/mining/signal", nil, nil); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Mining signaled")
	return nil
}
