package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/jobo-ai/jobo-go/jobo"
)

// printJobs drains seq to w and returns the number of jobs printed. It stops
// after maxJobs jobs when maxJobs is positive.
func printJobs(w io.Writer, seq iter.Seq2[jobo.Job, error], maxJobs int, asJSON bool) (int, error) {
	enc := json.NewEncoder(w)
	count := 0
	for job, err := range seq {
		if err != nil {
			return count, err
		}
		if asJSON {
			if err := enc.Encode(job); err != nil {
				return count, err
			}
		} else {
			printJob(w, job)
		}
		count++
		if maxJobs > 0 && count >= maxJobs {
			break
		}
	}
	return count, nil
}

func printJob(w io.Writer, job jobo.Job) {
	fmt.Fprintf(w, "• %s - %s", job.Title, job.Company.Name)
	if job.IsRemote {
		fmt.Fprint(w, " [REMOTE]")
	}
	fmt.Fprintln(w)

	if where := locationSummary(job.Locations); where != "" {
		fmt.Fprintf(w, "  Location: %s\n", where)
	}
	if pay := compensationSummary(job.Compensation); pay != "" {
		fmt.Fprintf(w, "  Pay: %s\n", pay)
	}
	fmt.Fprintf(w, "  Posted: %s  Source: %s\n", job.PostedAt().Format("2006-01-02"), job.Source)
	if job.ApplyURL != "" {
		fmt.Fprintf(w, "  Apply: %s\n", job.ApplyURL)
	}
}

func locationSummary(locations []jobo.JobLocation) string {
	parts := make([]string, 0, len(locations))
	for _, loc := range locations {
		if loc.Location != "" {
			parts = append(parts, loc.Location)
			continue
		}
		var fields []string
		for _, f := range []string{loc.City, loc.State, loc.Country} {
			if f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) > 0 {
			parts = append(parts, strings.Join(fields, ", "))
		}
	}
	return strings.Join(parts, "; ")
}

func compensationSummary(c *jobo.JobCompensation) string {
	if c == nil {
		return ""
	}
	if c.Min == nil && c.Max == nil {
		return c.RawText
	}

	var amount string
	switch {
	case c.Min != nil && c.Max != nil:
		amount = fmt.Sprintf("%.0f-%.0f", *c.Min, *c.Max)
	case c.Min != nil:
		amount = fmt.Sprintf("from %.0f", *c.Min)
	default:
		amount = fmt.Sprintf("up to %.0f", *c.Max)
	}
	if c.Currency != "" {
		amount += " " + c.Currency
	}
	if c.Period != "" {
		amount += "/" + c.Period
	}
	if c.IsEstimated {
		amount += " (estimated)"
	}
	return amount
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
