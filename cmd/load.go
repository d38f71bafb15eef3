package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/asn-cli/internal/asn"
	"github.com/sells-group/asn-cli/internal/export"
)

var (
	loadCSVPath string
	loadCountry string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load an exported CSV into the AS filter list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("load"); err != nil {
			return err
		}

		f, err := appFs.Open(loadCSVPath)
		if err != nil {
			return eris.Wrapf(err, "open %s", loadCSVPath)
		}
		defer f.Close() //nolint:errcheck

		records, err := export.ReadRecords(ctx, f)
		if err != nil {
			return eris.Wrapf(err, "read %s", loadCSVPath)
		}

		country, err := recordsCountry(records, loadCountry)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := st.SaveEntries(ctx, country, records)
		if err != nil {
			return eris.Wrap(err, "save entries")
		}

		zap.L().Info("load complete",
			zap.String("import_id", res.ID),
			zap.String("country", res.Country),
			zap.Int("rows", res.Rows),
			zap.String("csv", loadCSVPath),
		)
		return nil
	},
}

// recordsCountry determines the single country an export belongs to. An
// explicit flag wins but must agree with every record.
func recordsCountry(records []asn.Record, flag string) (string, error) {
	country := ""
	if flag != "" {
		c, err := asn.NormalizeCountry(flag)
		if err != nil {
			return "", err
		}
		country = c
	}
	for _, r := range records {
		if country == "" {
			country = r.Country
			continue
		}
		if r.Country != country {
			return "", eris.Errorf("export mixes countries %s and %s (AS%d)", country, r.Country, r.ASN)
		}
	}
	if country == "" {
		return "", eris.New("export has no rows; pass --country to clear a country's entries")
	}
	return country, nil
}

func init() {
	loadCmd.Flags().StringVar(&loadCSVPath, "csv", "", "path to an exported CSV file (required)")
	loadCmd.Flags().StringVar(&loadCountry, "country", "", "country the export belongs to (default: taken from the rows)")
	_ = loadCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(loadCmd)
}
