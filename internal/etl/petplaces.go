package etl

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dogoodogoo/etl-cli/internal/db"
	"github.com/dogoodogoo/etl-cli/pkg/kortour"
)

// petPageSize is the single page fetched from the pet tour API; the dataset
// is small enough to fit in one request.
const petPageSize = 500

// PetPlaces loads pet-friendly facilities from the KorPetTourService2 API
// into the pet_places table. Rows arrive with coordinates, so no geocoding
// is involved.
type PetPlaces struct {
	client *kortour.Client
	log    *zap.Logger
}

// NewPetPlaces creates the pet places job. A nil client (missing API key)
// makes the job a no-op that loads zero rows.
func NewPetPlaces(client *kortour.Client) *PetPlaces {
	return &PetPlaces{
		client: client,
		log:    zap.L().With(zap.String("job", "petplaces")),
	}
}

func (j *PetPlaces) Name() string  { return "petplaces" }
func (j *PetPlaces) Table() string { return "pet_places" }

// Extract fetches one page of facilities. Source-side failures are recovered
// as an empty result so the run continues with zero rows.
func (j *PetPlaces) Extract(ctx context.Context) (any, error) {
	if j.client == nil {
		j.log.Warn("no API key configured, skipping fetch")
		return []kortour.Place(nil), nil
	}
	places, err := j.client.AreaBasedList(ctx, 1, petPageSize)
	if err != nil {
		j.log.Warn("fetch failed", zap.Error(err))
		return []kortour.Place(nil), nil
	}
	return places, nil
}

// Transform drops rows without a name or address, truncates fields to their
// column widths, and filters out coordinates that fall outside Korea.
func (j *PetPlaces) Transform(_ context.Context, raw any) (*Dataset, error) {
	places := raw.([]kortour.Place)

	ds := &Dataset{
		Columns: []string{"facility_name", "address", "latitude", "longitude", "tel", "category"},
	}
	dropped := 0
	for _, p := range places {
		name := strings.TrimSpace(p.Title)
		addr := strings.TrimSpace(p.Address)
		if name == "" || addr == "" {
			dropped++
			continue
		}

		var lat, lng any
		fLng, errX := strconv.ParseFloat(strings.TrimSpace(p.MapX), 64)
		fLat, errY := strconv.ParseFloat(strings.TrimSpace(p.MapY), 64)
		if errX == nil && errY == nil {
			if !inKorea(fLng, fLat) {
				dropped++
				continue
			}
			lat, lng = fLat, fLng
		}

		ds.Rows = append(ds.Rows, []any{
			truncRunes(name, 254),
			addr,
			lat,
			lng,
			truncRunes(strings.TrimSpace(p.Tel), 49),
			truncRunes(strings.TrimSpace(p.Category), 49),
		})
	}

	j.log.Info("transformed", zap.Int("rows", ds.Len()), zap.Int("dropped", dropped))
	return ds, nil
}

// Load replaces the pet_places table contents with the dataset.
func (j *PetPlaces) Load(ctx context.Context, pool db.Pool, ds *Dataset) error {
	_, err := db.ReplaceAndLoad(ctx, pool, j.Table(), ds.Columns, ds.Rows)
	return err
}
