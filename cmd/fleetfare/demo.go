// README: demo runs the downtown end-of-shift driver scenario and prints the ranking.
package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/modules/ranking"
	"fleetfare/internal/types"
)

const demoTimestamp = 1647889200

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Rank three sample requests for a downtown driver near the end of a shift",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return runDemo(cmd.Context(), cmd.OutOrStdout(), a.ranking)
	},
}

func demoInput() ranking.RankInput {
	supply := 20
	return ranking.RankInput{
		Driver: ranking.DriverProfile{
			CurrentZone:           types.ZoneDowntown,
			CurrentFuel:           80,
			ShiftRemainingMinutes: 120,
			EarningsToday:         180,
			EarningsTarget:        250,
			VehicleMPG:            25,
			CostPerMile:           0.32,
			ReturnToBase:          true,
			BaseZone:              types.ZoneDowntown,
			MinAcceptableFare:     8,
		},
		Profiles: map[types.ID]pricing.UserProfile{
			"user1": {LoyaltyTier: 2, PriceSensitivity: 1.0},
			"user2": {LoyaltyTier: 3, PriceSensitivity: 0.9},
			"user3": {LoyaltyTier: 5, PriceSensitivity: 1.2},
		},
		Requests: []pricing.TripRequest{
			{UserID: "user1", Distance: 3.5, Duration: 12, Zone: types.ZoneDowntown, Timestamp: demoTimestamp,
				RideDemandLevel: 3, TrafficLevel: 2, WeatherSeverity: types.WeatherClear, TrafficBlocks: 2},
			{UserID: "user2", Distance: 8.2, Duration: 25, Zone: types.ZoneSuburb, Timestamp: demoTimestamp,
				RideDemandLevel: 2, TrafficLevel: 1, WeatherSeverity: types.WeatherClear, TrafficBlocks: 1},
			{UserID: "user3", Distance: 12.5, Duration: 35, Zone: types.ZoneAirport, Timestamp: demoTimestamp,
				RideDemandLevel: 4, TrafficLevel: 3, WeatherSeverity: types.WeatherRainy, TrafficBlocks: 3, IsEventNearby: true},
		},
		Supply: &supply,
	}
}

func runDemo(ctx context.Context, w io.Writer, svc *ranking.Service) error {
	in := demoInput()
	ranked := svc.Rank(ctx, in)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tREQUEST\tFARE\tPROFIT\tTIME\tPROFIT/MIN\tSCORE")
	for i, s := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.0f\t%.2f\t%.2f\n",
			i+1, s.RequestID, s.Fare, s.Profit, s.TotalTime, s.ProfitPerMinute, s.FinalScore)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	best, ok := ranking.Best(ranked, in.Driver)
	if !ok {
		_, err := fmt.Fprintln(w, "\nno acceptable request")
		return err
	}
	_, err := fmt.Fprintf(w, "\nbest request: %s (fare %.2f, profit %.2f, %.0f min)\n",
		best.RequestID, best.Fare, best.Profit, best.TotalTime)
	return err
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
