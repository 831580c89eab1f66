package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/desh/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local article history",
	Long: `history reports how many articles are remembered and how many of them
are in the search index, and lists the most recent ones. --clear-cache drops
the cached provider responses; the history itself is kept.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringP("format", "f", formatText, "output format: text, json or yaml")
	historyCmd.Flags().IntP("limit", "n", 10, "list at most n recent articles (0 for none)")
	historyCmd.Flags().Bool("clear-cache", false, "drop cached provider responses")
	rootCmd.AddCommand(historyCmd)
}

type historyRecord struct {
	Title    string    `json:"title" yaml:"title"`
	URL      string    `json:"url" yaml:"url"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	LastSeen time.Time `json:"last_seen" yaml:"last_seen"`
	Queries  []string  `json:"queries,omitempty" yaml:"queries,omitempty"`
}

type historyReport struct {
	Articles     int             `json:"articles" yaml:"articles"`
	Indexed      int             `json:"indexed" yaml:"indexed"`
	CacheCleared bool            `json:"cache_cleared" yaml:"cache_cleared"`
	Recent       []historyRecord `json:"recent" yaml:"recent"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := validFormat(format); err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	rt, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	var report historyReport
	if clearCache, _ := cmd.Flags().GetBool("clear-cache"); clearCache {
		if err := rt.store.ClearResults(); err != nil {
			return fmt.Errorf("clearing result cache: %w", err)
		}
		report.CacheCleared = true
	}

	if report.Articles, err = rt.store.HistoryCount(); err != nil {
		return fmt.Errorf("counting history: %w", err)
	}
	if report.Indexed, err = rt.searcher.DocCount(); err != nil {
		return fmt.Errorf("counting indexed articles: %w", err)
	}

	report.Recent = []historyRecord{}
	if limit > 0 {
		entries, err := rt.store.GetHistory(limit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		report.Recent = historyRecords(entries)
	}

	out := cmd.OutOrStdout()
	if format == formatText {
		return writeHistoryText(out, report)
	}
	return writeStructured(out, format, report)
}

func historyRecords(entries []*storage.Entry) []historyRecord {
	records := make([]historyRecord, len(entries))
	for i, e := range entries {
		records[i] = historyRecord{
			Title:    e.Article.Title,
			URL:      e.Article.URL,
			Source:   e.Article.Source,
			LastSeen: e.LastSeen,
			Queries:  e.Queries,
		}
	}
	return records
}

func writeHistoryText(w io.Writer, r historyReport) error {
	if r.CacheCleared {
		fmt.Fprintln(w, "Result cache cleared.")
	}
	fmt.Fprintf(w, "%d articles in history, %d indexed for search\n", r.Articles, r.Indexed)
	if len(r.Recent) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAST SEEN\tSOURCE\tTITLE")
	for _, rec := range r.Recent {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.LastSeen.Local().Format("2006-01-02 15:04"), rec.Source, rec.Title)
	}
	return tw.Flush()
}
