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
	feedBatchSize   int
	feedSources     []string
	feedRemote      bool
	feedPostedAfter string
	feedCountry     string
	feedRegion      string
	feedCity        string
	feedCursor      string

	expiredSince string
)

// feedCmd represents the feed command
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Stream jobs from the bulk job feed",
	Long: `Stream jobs from the bulk job feed, following cursors until the feed is
exhausted or --limit jobs have been printed.

Examples:
  jobo feed --source greenhouse --remote --limit 20
  jobo feed --country "United States" --posted-after 72h --filter 'SalaryMin >= 120000'`,
	PreRunE: initializeApp,
	RunE:    runFeed,
}

// expiredCmd represents the expired command
var expiredCmd = &cobra.Command{
	Use:   "expired",
	Short: "List ids of jobs that expired recently",
	Long: `List ids of jobs that expired since --since (a duration such as 24h, a date
or an RFC 3339 timestamp). The API accepts at most seven days.`,
	PreRunE: initializeApp,
	RunE:    runExpired,
}

func init() {
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(expiredCmd)

	feedCmd.Flags().IntVar(&feedBatchSize, "batch-size", jobo.DefaultBatchSize, "jobs per request (1-1000)")
	feedCmd.Flags().StringSliceVar(&feedSources, "source", nil, "only jobs from these sources")
	feedCmd.Flags().BoolVar(&feedRemote, "remote", false, "only remote jobs (--remote=false for on-site only)")
	feedCmd.Flags().StringVar(&feedPostedAfter, "posted-after", "", "only jobs posted after a duration ago, date or timestamp")
	feedCmd.Flags().StringVar(&feedCountry, "country", "", "location filter: country")
	feedCmd.Flags().StringVar(&feedRegion, "region", "", "location filter: region or state")
	feedCmd.Flags().StringVar(&feedCity, "city", "", "location filter: city")
	feedCmd.Flags().StringVar(&feedCursor, "cursor", "", "resume from a cursor of a previous run")
	addFilterFlags(feedCmd)

	expiredCmd.Flags().StringVar(&expiredSince, "since", "24h", "duration ago, date or timestamp")
	expiredCmd.Flags().IntVar(&feedBatchSize, "batch-size", jobo.DefaultBatchSize, "ids per request (1-10000)")
	expiredCmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after N ids (0 = no limit)")
}

func runFeed(cmd *cobra.Command, args []string) error {
	req := jobo.JobFeedRequest{
		Sources:   feedSources,
		Cursor:    feedCursor,
		BatchSize: feedBatchSize,
	}
	if cmd.Flags().Changed("remote") {
		req.IsRemote = &feedRemote
	}
	if feedPostedAfter != "" {
		t, err := parseSince(feedPostedAfter, time.Now())
		if err != nil {
			return err
		}
		req.PostedAfter = &t
	}
	if feedCountry != "" || feedRegion != "" || feedCity != "" {
		req.Locations = []jobo.LocationFilter{{Country: feedCountry, Region: feedRegion, City: feedCity}}
	}

	f, err := resolveFilter()
	if err != nil {
		return err
	}

	logger.Info().
		Strs("sources", req.Sources).
		Int("batch_size", req.BatchSize).
		Str("filter", describeFilter(f)).
		Msg("Streaming job feed")

	jobs := filter.Apply(client.Feed.EnumerateJobs(cmd.Context(), req), f)
	count, err := printJobs(cmd.OutOrStdout(), jobs, limit, jsonOutput)
	logger.Info().Int("jobs", count).Msg("Feed finished")
	return err
}

func runExpired(cmd *cobra.Command, args []string) error {
	since, err := parseSince(expiredSince, time.Now())
	if err != nil {
		return err
	}

	req := jobo.ExpiredJobIDsRequest{ExpiredSince: since, BatchSize: feedBatchSize}
	out := cmd.OutOrStdout()
	count := 0
	for id, err := range client.Feed.EnumerateExpiredJobIDs(cmd.Context(), req) {
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
		count++
		if limit > 0 && count >= limit {
			break
		}
	}

	logger.Info().Time("since", since).Int("ids", count).Msg("Expired jobs listed")
	return nil
}

// parseSince accepts a duration ago ("36h"), a date ("2025-01-31") or an
// RFC 3339 timestamp
func parseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("invalid time %q: duration must be positive", value)
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use a duration like 24h, a date like 2025-01-31 or an RFC 3339 timestamp", value)
}

func describeFilter(f filter.Filter) string {
	if cf, ok := f.(filter.CompiledFilter); ok {
		return cf.Expression()
	}
	return "none"
}
