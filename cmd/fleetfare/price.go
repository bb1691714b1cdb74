// README: price and rank subcommands evaluate JSON request files offline against the configured model.
package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/modules/ranking"
	"fleetfare/internal/types"
)

var (
	priceFile string
	rankFile  string
	rankBest  bool
)

type priceInput struct {
	TripRequest   pricing.TripRequest  `json:"trip_request"`
	UserProfile   *pricing.UserProfile `json:"user_profile"`
	CurrentSupply *int                 `json:"current_supply"`
}

type rankInput struct {
	DriverProfile ranking.DriverProfile            `json:"driver_profile"`
	UserProfiles  map[types.ID]pricing.UserProfile `json:"user_profiles"`
	TripRequests  []pricing.TripRequest            `json:"trip_requests"`
	CurrentSupply *int                             `json:"current_supply"`
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a trip request from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in priceInput
		if err := readJSON(priceFile, cmd.InOrStdin(), &in); err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		user := pricing.DefaultUserProfile()
		if in.UserProfile != nil {
			user = *in.UserProfile
		}
		req := in.TripRequest
		if req.Timestamp == 0 {
			req.Timestamp = float64(time.Now().Unix())
		}
		q := a.pricing.Price(cmd.Context(), req, user, in.CurrentSupply)
		return writeJSON(cmd.OutOrStdout(), q)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a driver's candidate requests from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := rankInput{DriverProfile: ranking.DefaultDriverProfile()}
		if err := readJSON(rankFile, cmd.InOrStdin(), &in); err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		now := float64(time.Now().Unix())
		for i := range in.TripRequests {
			if in.TripRequests[i].Timestamp == 0 {
				in.TripRequests[i].Timestamp = now
			}
		}
		ri := ranking.RankInput{
			Driver:   in.DriverProfile,
			Profiles: in.UserProfiles,
			Requests: in.TripRequests,
			Supply:   in.CurrentSupply,
		}
		if rankBest {
			best, ok := a.ranking.Best(cmd.Context(), ri)
			if !ok {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"status": "success", "best_request": nil})
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"status": "success", "best_request": best})
		}
		ranked := a.ranking.Rank(cmd.Context(), ri)
		return writeJSON(cmd.OutOrStdout(), map[string]any{"status": "success", "ranked_requests": ranked})
	},
}

// readJSON decodes path, or stdin when path is "-".
func readJSON(path string, stdin io.Reader, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	priceCmd.Flags().StringVarP(&priceFile, "file", "f", "-", "request JSON file, - for stdin")
	rankCmd.Flags().StringVarP(&rankFile, "file", "f", "-", "ranking JSON file, - for stdin")
	rankCmd.Flags().BoolVar(&rankBest, "best", false, "print only the best acceptable request")
	rootCmd.AddCommand(priceCmd, rankCmd)
}
