package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dogoodogoo/etl-cli/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>...",
	Short: "Resolve one address through the tiered geocoder",
	Long:  "Runs a single address through normalization and the tiered resolution fallback, printing the coordinates or reporting no match. Useful for debugging unresolved rows from the failure log.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Naver.ClientID == "" || cfg.Naver.ClientSecret == "" {
			return fmt.Errorf("NCP credentials not configured (naver.client_id, naver.client_secret)")
		}

		resolver := buildResolver(cfg)
		res := resolver.Resolve(cmd.Context(), geocode.Record{
			Address: strings.Join(args, " "),
		})

		if !res.Matched {
			fmt.Println("no match")
			return nil
		}
		fmt.Printf("%.7f,%.7f\n", res.Lat, res.Lng)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
