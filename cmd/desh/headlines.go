package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/desh/internal/headlines"
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/tui"
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Fetch headlines once and print them",
	Long: `headlines runs a single query for the given filter and prints the
articles as cards, JSON or YAML. Flags default to the [filter] section of the
configuration.`,
	Args: cobra.NoArgs,
	RunE: runHeadlines,
}

func init() {
	headlinesCmd.Flags().StringP("language", "l", "", "language: en or hi")
	headlinesCmd.Flags().StringP("category", "c", "", "category, see `desh catalog`")
	headlinesCmd.Flags().StringP("region", "r", "", "state or union territory")
	headlinesCmd.Flags().StringP("format", "f", formatText, "output format: text, json or yaml")
	headlinesCmd.Flags().IntP("limit", "n", 0, "print at most n articles (0 for all)")
	headlinesCmd.Flags().Bool("no-cache", false, "bypass the result cache")
	rootCmd.AddCommand(headlinesCmd)
}

// filterFromFlags applies the filter flags on top of base.
func filterFromFlags(cmd *cobra.Command, base news.Filter) (news.Filter, error) {
	f := base
	if cmd.Flags().Changed("language") {
		s, _ := cmd.Flags().GetString("language")
		l, err := news.ParseLanguage(s)
		if err != nil {
			return f, err
		}
		f = f.WithLanguage(l)
	}
	if cmd.Flags().Changed("category") {
		s, _ := cmd.Flags().GetString("category")
		c, err := news.ParseCategory(s)
		if err != nil {
			return f, err
		}
		f = f.WithCategory(c)
	}
	if cmd.Flags().Changed("region") {
		s, _ := cmd.Flags().GetString("region")
		r, err := news.ParseRegion(s)
		if err != nil {
			return f, err
		}
		f = f.WithRegion(r)
	}
	return f, nil
}

func runHeadlines(cmd *cobra.Command, _ []string) error {
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

	f, err := filterFromFlags(cmd, rt.filter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := headlines.New(f)
	fetch := c.Start()
	fetch.Force, _ = cmd.Flags().GetBool("no-cache")

	res := rt.service.Run(ctx, *fetch)
	c.Complete(res)
	if res.Err != nil {
		return fmt.Errorf("fetching %q: %w", fetch.Query, res.Err)
	}

	s := c.State()
	articles := s.Articles
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	out := cmd.OutOrStdout()
	if format == formatText {
		_, err := fmt.Fprintln(out, tui.RenderCards(articles, tui.CardOptionsFromConfig(cfg.UI)))
		return err
	}
	return writeStructured(out, format, newHeadlinesReport(s.Filter, articles, s.Cached))
}

// commandContext is the context for commands run outside cobra's Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
