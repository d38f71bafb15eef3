package main

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/asn-cli/internal/asn"
	"github.com/sells-group/asn-cli/internal/export"
	"github.com/sells-group/asn-cli/internal/fetcher"
)

var (
	scrapeCountry string
	scrapeOut     string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Export a country's IPv6-announcing autonomous systems to CSV",
	Long: "Fetches the whois country listing, keeps every AS with a non-zero IPv6 count and writes " +
		"country,asn,description,num_ipv6s rows. The output file is only replaced when the whole listing parsed.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}
		country, err := asn.NormalizeCountry(scrapeCountry)
		if err != nil {
			return err
		}

		out := scrapeOut
		if out == "" {
			out = filepath.Join(cfg.Export.Dir, exportName(country))
		}

		records, err := newExtractor().Extract(ctx, country)
		if err != nil {
			return err
		}

		if err := export.WriteFile(appFs, out, records); err != nil {
			return eris.Wrap(err, "write export")
		}

		zap.L().Info("scrape complete",
			zap.String("country", country),
			zap.Int("records", len(records)),
			zap.String("path", out),
		)
		return nil
	},
}

// exportName is the default file name for a country's export, e.g. all_at_as.csv.
func exportName(country string) string {
	return "all_" + strings.ToLower(country) + "_as.csv"
}

func newExtractor() *asn.Extractor {
	limiters := fetcher.DefaultRateLimiters()
	if u, err := url.Parse(cfg.Source.BaseURL); err == nil && u.Host != "" && cfg.Source.RatePerSec > 0 {
		limiters[u.Host] = rate.NewLimiter(rate.Limit(cfg.Source.RatePerSec), 1)
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Source.UserAgent,
		Timeout:      time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		RateLimiters: limiters,
	})

	layout := asn.DefaultLayout()
	if cfg.Source.TableClass != "" {
		layout.MarkerClass = cfg.Source.TableClass
	}
	return asn.NewExtractor(f, cfg.Source.BaseURL, layout)
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeCountry, "country", "", "two-letter country code, e.g. AT (required)")
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "output CSV path (default <export.dir>/all_<country>_as.csv)")
	_ = scrapeCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(scrapeCmd)
}
