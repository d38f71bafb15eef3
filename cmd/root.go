package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/asn-cli/internal/config"
)

var (
	cfg   *config.Config
	appFs afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:          "asn-cli",
	Short:        "Per-country autonomous system listings",
	Long:         "Scrapes the autonomous systems announcing IPv6 space for a country, exports them as CSV and loads them into the scan filter list.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// run executes the command line and reports a failure once on stderr.
func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	return exitCode(err)
}

func main() {
	os.Exit(run(os.Args[1:]))
}
