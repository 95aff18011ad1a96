package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tharu280/tourAgent/internal/bootstrap"
	"github.com/tharu280/tourAgent/internal/config"
	"github.com/tharu280/tourAgent/internal/domain/model"
	"github.com/tharu280/tourAgent/internal/usecase"
)

const defaultQuery = "I wanna go from kandy to colombo, 2 days"

var flagJSON bool

var rootCmd = &cobra.Command{
	Use:           "tripctl",
	Short:         "tripctl plans road trips from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var planCmd = &cobra.Command{
	Use:   "plan [query]",
	Short: "Plan a trip from a free-text request",
	Long: `Runs the trip planning pipeline once and prints the itinerary.
With --json the full response is printed instead.`,
	Args: cobra.ArbitraryArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&flagJSON, "json", false, "print the full response as JSON")
	rootCmd.AddCommand(planCmd)
}

// newUseCase は設定を読み込んでユースケースを組み立てる。テストでは差し替える
var newUseCase = func(ctx context.Context) (usecase.TripPlanUseCase, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.TripPlanUseCase, app.Close, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	uc, closeFn, err := newUseCase(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return plan(ctx, cmd.OutOrStdout(), uc, resolveQuery(args), flagJSON)
}

func resolveQuery(args []string) string {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return defaultQuery
	}
	return query
}

func plan(ctx context.Context, out io.Writer, uc usecase.TripPlanUseCase, query string, asJSON bool) error {
	resp, err := uc.PlanTrip(ctx, &model.TripPlanRequest{Query: query})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if !resp.GuardrailDecision.IsValid() {
		fmt.Fprintln(out, derefOr(resp.FinalResponse, model.GuardrailFallbackMessage))
		return nil
	}
	if resp.RouteDistanceKm != nil && resp.RouteDurationLabel != nil {
		fmt.Fprintf(out, "Route: %.1f km, %s\n\n", *resp.RouteDistanceKm, *resp.RouteDurationLabel)
	}
	fmt.Fprintln(out, derefOr(resp.FinalItinerary, model.ItineraryFallbackMessage))
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
