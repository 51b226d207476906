package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jobo-ai/jobo-go/jobo"
)

// geocodeConcurrency bounds the number of geocode requests in flight
const geocodeConcurrency = 4

// geocodeCmd represents the geocode command
var geocodeCmd = &cobra.Command{
	Use:   "geocode <location>...",
	Short: "Resolve free-form locations",
	Long: `Resolve free-form location strings into structured locations with
coordinates. Several locations are resolved concurrently and printed in the
order given.

Example:
  jobo geocode "London, UK" "Remote - US" "Münich"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runGeocode,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}

func runGeocode(cmd *cobra.Command, args []string) error {
	results, err := geocodeAll(cmd.Context(), client.Locations, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, results)
	}
	for _, result := range results {
		printGeocode(out, result)
	}
	return nil
}

// geocoder is the part of jobo.LocationsClient the command uses
type geocoder interface {
	Geocode(ctx context.Context, location string) (*jobo.GeocodeResult, error)
}

// geocodeAll resolves inputs concurrently; results keep the input order
func geocodeAll(ctx context.Context, g geocoder, inputs []string) ([]*jobo.GeocodeResult, error) {
	results := make([]*jobo.GeocodeResult, len(inputs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(geocodeConcurrency)

	for i, input := range inputs {
		eg.Go(func() error {
			result, err := g.Geocode(ctx, input)
			if err != nil {
				return fmt.Errorf("geocode %q: %w", input, err)
			}
			// Each goroutine owns its slot
			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printGeocode(w io.Writer, result *jobo.GeocodeResult) {
	if !result.Succeeded {
		reason := result.Error
		if reason == "" {
			reason = "no match"
		}
		fmt.Fprintf(w, "✗ %s: %s\n", result.Input, reason)
		return
	}

	fmt.Fprintf(w, "✓ %s", result.Input)
	if result.Method != "" {
		fmt.Fprintf(w, " (%s)", result.Method)
	}
	fmt.Fprintln(w)
	for _, loc := range result.Locations {
		fmt.Fprintf(w, "  %s", loc.DisplayName)
		if loc.Latitude != nil && loc.Longitude != nil {
			fmt.Fprintf(w, " [%.4f, %.4f]", *loc.Latitude, *loc.Longitude)
		}
		fmt.Fprintln(w)
	}
}
