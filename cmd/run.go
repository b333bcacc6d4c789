package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dogoodogoo/etl-cli/internal/config"
	"github.com/dogoodogoo/etl-cli/internal/db"
	"github.com/dogoodogoo/etl-cli/internal/etl"
	"github.com/dogoodogoo/etl-cli/pkg/geocode"
	"github.com/dogoodogoo/etl-cli/pkg/kma"
	"github.com/dogoodogoo/etl-cli/pkg/kortour"
	"github.com/dogoodogoo/etl-cli/pkg/seoulopen"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the data load jobs",
	Long:  "Runs every load job in order, or a single one with --job. Job failures are isolated: one failing job does not stop the rest.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := db.New(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}

		jobs := buildJobs(cfg)
		if name, _ := cmd.Flags().GetString("job"); name != "" {
			jobs, err = selectJob(jobs, name)
			if err != nil {
				return err
			}
		}

		etl.NewRunner(pool).Run(ctx, jobs)
		return nil
	},
}

func init() {
	runCmd.Flags().String("job", "", "run a single job (petplaces, trashbins, fountains, weather)")
	rootCmd.AddCommand(runCmd)
}

// buildJobs assembles the job list in execution order. Clients whose API
// keys are missing stay nil; those jobs run as no-ops.
func buildJobs(cfg *config.Config) []etl.Job {
	var petClient *kortour.Client
	if cfg.KorTour.Key != "" {
		petClient = kortour.NewClient(cfg.KorTour.Key)
	}

	var seoulClient *seoulopen.Client
	if cfg.Seoul.Key != "" {
		seoulClient = seoulopen.NewClient(cfg.Seoul.Key)
	}

	var kmaClient *kma.Client
	if cfg.KMA.Key != "" {
		kmaClient = kma.NewClient(cfg.KMA.Key)
	}

	resolver := buildResolver(cfg)
	faillog := etl.NewFailureLog(cfg.Paths.LogDir)

	return []etl.Job{
		etl.NewPetPlaces(petClient),
		etl.NewTrashBins(cfg.Paths.RawDir, resolver, cfg.Geocode.Workers, faillog),
		etl.NewFountains(seoulClient),
		etl.NewWeather(kmaClient),
	}
}

// buildResolver wires the tiered geocoder from config. Missing NCP
// credentials leave the client nil, so every resolution reads unmatched.
func buildResolver(cfg *config.Config) *geocode.Resolver {
	var client geocode.Client
	if cfg.Naver.ClientID != "" && cfg.Naver.ClientSecret != "" {
		client = geocode.NewNCPClient(
			cfg.Naver.ClientID,
			cfg.Naver.ClientSecret,
			geocode.WithRateLimit(cfg.Geocode.RateLimit),
		)
	}
	norm := geocode.NewNormalizer(cfg.Geocode.Substitutions)
	return geocode.NewResolver(client, norm, cfg.Geocode.Region, nil)
}

// selectJob narrows the job list to the named one.
func selectJob(jobs []etl.Job, name string) ([]etl.Job, error) {
	var names []string
	for _, j := range jobs {
		if j.Name() == name {
			return []etl.Job{j}, nil
		}
		names = append(names, j.Name())
	}
	return nil, fmt.Errorf("unknown job %q (valid: %s)", name, strings.Join(names, ", "))
}
