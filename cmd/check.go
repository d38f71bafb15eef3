package main

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/asn-cli/internal/store"
)

var (
	checkASN  int64
	checkMode string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether an AS passes the filter list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("check"); err != nil {
			return err
		}
		if checkASN <= 0 || checkASN > math.MaxUint32 {
			return eris.Errorf("asn %d out of range", checkASN)
		}
		mode, err := store.ParseListMode(checkMode)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		list, err := st.FilterList(ctx, mode)
		if err != nil {
			return eris.Wrap(err, "load filter list")
		}

		verdict := "denied"
		if list.Allows(uint32(checkASN)) {
			verdict = "allowed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "AS%d %s (%s list, %d entries)\n", checkASN, verdict, mode, list.Len())
		return nil
	},
}

func init() {
	checkCmd.Flags().Int64Var(&checkASN, "asn", 0, "AS number to check (required)")
	checkCmd.Flags().StringVar(&checkMode, "mode", string(store.ListAllow), "list interpretation: allow or deny")
	_ = checkCmd.MarkFlagRequired("asn")
	rootCmd.AddCommand(checkCmd)
}
