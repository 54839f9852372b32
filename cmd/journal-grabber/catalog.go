package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the downloaded-paper catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Long: `List shows cataloged papers, newest first by default. Text, category,
author, profile, and date filters combine with AND.`,
	RunE: runCatalogList,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE:  runCatalogStats,
}

func init() {
	catalogListCmd.Flags().String("text", "", "substring match on title, authors, abstract, or arXiv id")
	catalogListCmd.Flags().String("category", "", "filter by arXiv category")
	catalogListCmd.Flags().String("author", "", "filter by author name")
	catalogListCmd.Flags().String("profile", "", "filter by profile id")
	catalogListCmd.Flags().String("from", "", "downloaded on or after (YYYY-MM-DD)")
	catalogListCmd.Flags().String("to", "", "downloaded on or before (YYYY-MM-DD)")
	catalogListCmd.Flags().String("sort", "downloaded_at", "sort field: title, authors, arxiv_id, or downloaded_at")
	catalogListCmd.Flags().Bool("asc", false, "sort ascending instead of descending")
	catalogListCmd.Flags().Int("page", 1, "page number")
	catalogListCmd.Flags().Int("per-page", 20, "entries per page")

	catalogCmd.AddCommand(catalogListCmd, catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	page, err := svc.ListCatalogEntries(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if page.Total == 0 {
		fmt.Println("No entries.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ARXIV ID\tTITLE\tAUTHORS\tDOWNLOADED")
	for _, e := range page.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.ArxivID, truncate(e.Title, 60), truncate(e.Authors, 40),
			e.DownloadedAt.Local().Format(time.DateOnly))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nPage %d of %d (%d entries)\n", page.Page, page.Pages, page.Total)
	return nil
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.CatalogStats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Total papers:    %d\n", stats.TotalCount)
	fmt.Printf("Last 30 days:    %d\n", stats.Last30DaysCount)

	if len(stats.TopCategories) > 0 {
		fmt.Println("\nTop categories:")
		for _, c := range stats.TopCategories {
			fmt.Printf("  %-20s %d\n", c.Category, c.Count)
		}
	}
	if len(stats.PerProfileCounts) > 0 {
		fmt.Println("\nPer profile:")
		for id, n := range stats.PerProfileCounts {
			fmt.Printf("  %-40s %d\n", id, n)
		}
	}
	return nil
}

func filterFromFlags(cmd *cobra.Command) (types.CatalogFilter, error) {
	var filter types.CatalogFilter

	filter.Text, _ = cmd.Flags().GetString("text")
	filter.Category, _ = cmd.Flags().GetString("category")
	filter.Author, _ = cmd.Flags().GetString("author")
	filter.ProfileID, _ = cmd.Flags().GetString("profile")
	filter.Page, _ = cmd.Flags().GetInt("page")
	filter.PerPage, _ = cmd.Flags().GetInt("per-page")

	sortBy, _ := cmd.Flags().GetString("sort")
	filter.SortBy = types.SortField(sortBy)
	asc, _ := cmd.Flags().GetBool("asc")
	filter.Descending = !asc

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		filter.From = t
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		// Inclusive end of day.
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, nil
}

// truncate shortens s to n display runes; byte slicing would cut
// multi-byte characters in half.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
