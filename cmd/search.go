package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobo-ai/jobo-go/filter"
	"github.com/jobo-ai/jobo-go/jobo"
)

var (
	searchLocation    string
	searchSources     []string
	searchRemote      bool
	searchPostedAfter string
	searchPage        int
	searchPageSize    int
	searchAll         bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search job listings",
	Long: `Search job listings. Without --all a single page is fetched with the simple
search endpoint; with --all every page of the advanced search is streamed.

Examples:
  jobo search "platform engineer" --location Berlin --remote
  jobo search golang --all --filter 'inCountry("Germany")' --limit 100`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchLocation, "location", "", "free-form location")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "only jobs from these sources")
	searchCmd.Flags().BoolVar(&searchRemote, "remote", false, "only remote jobs (--remote=false for on-site only)")
	searchCmd.Flags().StringVar(&searchPostedAfter, "posted-after", "", "only jobs posted after a duration ago, date or timestamp")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "page number (ignored with --all)")
	searchCmd.Flags().IntVar(&searchPageSize, "page-size", jobo.DefaultPageSize, "results per page")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "stream every page")
	addFilterFlags(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) > 0 {
		query = args[0]
	}

	var remote *bool
	if cmd.Flags().Changed("remote") {
		remote = &searchRemote
	}
	var postedAfter *time.Time
	if searchPostedAfter != "" {
		t, err := parseSince(searchPostedAfter, time.Now())
		if err != nil {
			return err
		}
		postedAfter = &t
	}

	f, err := resolveFilter()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if searchAll {
		req := jobo.JobSearchRequest{
			Sources:     searchSources,
			IsRemote:    remote,
			PostedAfter: postedAfter,
			PageSize:    searchPageSize,
		}
		if query != "" {
			req.Queries = []string{query}
		}
		if searchLocation != "" {
			req.Locations = []string{searchLocation}
		}

		jobs := filter.Apply(client.Search.Enumerate(cmd.Context(), req), f)
		count, err := printJobs(out, jobs, limit, jsonOutput)
		logger.Info().Int("jobs", count).Msg("Search finished")
		return err
	}

	resp, err := client.Search.Search(cmd.Context(), jobo.SearchParams{
		Query:       query,
		Location:    searchLocation,
		Sources:     strings.Join(searchSources, ","),
		Remote:      remote,
		PostedAfter: postedAfter,
		Page:        searchPage,
		PageSize:    searchPageSize,
	})
	if err != nil {
		return err
	}

	jobs := filter.Apply(func(yield func(jobo.Job, error) bool) {
		for _, job := range resp.Jobs {
			if !yield(job, nil) {
				return
			}
		}
	}, f)
	count, err := printJobs(out, jobs, limit, jsonOutput)
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Fprintf(out, "\nShowing %s of %d (page %d/%d)\n", plural(count, "job"), resp.Total, resp.Page, resp.TotalPages)
	}
	return nil
}
