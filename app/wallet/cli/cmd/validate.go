package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

type chainStatus struct {
	Valid  bool   `json:"valid"`
	Index  uint64 `json:"index,omitempty"`
	Reason string `json:"reason,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ask the node to validate its chain",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	var cs chainStatus
	if err := send(http.MethodGet, "/v1/chain/validate", nil, &cs); err != nil {
		return err
	}

	if !cs.Valid {
		return fmt.Errorf("chain invalid at block[%d]: %s", cs.Index, cs.Reason)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Chain is valid")
	return nil
}
