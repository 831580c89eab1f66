package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/desh/internal/news"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List categories, search keywords and regions",
	Args:  cobra.NoArgs,
	// The catalog is embedded; no config is needed.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runCatalog,
}

func init() {
	catalogCmd.Flags().StringP("format", "f", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(catalogCmd)
}

type categoryRecord struct {
	Value     news.Category `json:"value" yaml:"value"`
	Label     string        `json:"label" yaml:"label"`
	Icon      string        `json:"icon" yaml:"icon"`
	KeywordEn string        `json:"keyword_en" yaml:"keyword_en"`
	KeywordHi string        `json:"keyword_hi" yaml:"keyword_hi"`
}

type catalogReport struct {
	Categories []categoryRecord `json:"categories" yaml:"categories"`
	Regions    []string         `json:"regions" yaml:"regions"`
}

func newCatalogReport() catalogReport {
	cats := news.Categories()
	r := catalogReport{
		Categories: make([]categoryRecord, len(cats)),
		Regions:    news.Regions(),
	}
	for i, c := range cats {
		r.Categories[i] = categoryRecord{
			Value:     c.Value,
			Label:     c.Label,
			Icon:      c.Icon,
			KeywordEn: c.Keyword(news.English),
			KeywordHi: c.Keyword(news.Hindi),
		}
	}
	return r
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := validFormat(format); err != nil {
		return err
	}

	report := newCatalogReport()
	out := cmd.OutOrStdout()
	if format != formatText {
		return writeStructured(out, format, report)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tLABEL\tENGLISH\tHINDI")
	for _, c := range report.Categories {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", c.Value, c.Icon, c.Label, c.KeywordEn, c.KeywordHi)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nREGIONS (%d, empty means %s)\n", len(report.Regions), news.RegionLabel(""))
	for _, r := range report.Regions {
		fmt.Fprintf(out, "  %s\n", r)
	}
	return nil
}
