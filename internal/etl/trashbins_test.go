package etl

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/dogoodogoo/etl-cli/pkg/geocode"
)

type stubGeocoder struct {
	mu        sync.Mutex
	responses map[string]geocode.Result
	calls     []string
}

func (s *stubGeocoder) Geocode(_ context.Context, query string) (geocode.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	return s.responses[query], nil
}

var binHeader = []string{colCity, colAddress, colLocation, colBinType, colPlaceType}

func newBinResolver(stub *stubGeocoder) *geocode.Resolver {
	return geocode.NewResolver(stub, nil, "서울특별시", nil)
}

func TestTrashBins_Transform(t *testing.T) {
	stub := &stubGeocoder{responses: map[string]geocode.Result{
		"서울특별시 중구 청계천로 14": {Lat: 37.5689, Lng: 126.9784, Matched: true},
	}}
	job := NewTrashBins(t.TempDir(), newBinResolver(stub), 1, nil)

	rows := [][]string{
		binHeader,
		{"중구", "청게천로 14", "을지로입구역 앞", "일반쓰레기", "가로변"},
		{"종로구", "없는길 99", "", "재활용", "가로변"},
		{"중구", "", "주소 없음", "일반쓰레기", "가로변"},
		{"중구", "nan", "", "일반쓰레기", "가로변"},
	}

	ds, err := job.Transform(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t,
		[]string{"city_name", "address", "location_desc", "bin_type", "bin_place_type", "latitude", "longitude"},
		ds.Columns)

	// Matched row keeps source text and gains coordinates.
	assert.Equal(t, "청게천로 14", ds.Rows[0][1])
	assert.Equal(t, 37.5689, ds.Rows[0][5])
	assert.Equal(t, 126.9784, ds.Rows[0][6])

	// Unresolved row still loads, with NULL coordinates.
	assert.Equal(t, "없는길 99", ds.Rows[1][1])
	assert.Nil(t, ds.Rows[1][5])
	assert.Nil(t, ds.Rows[1][6])
}

func TestTrashBins_TransformWritesFailureLog(t *testing.T) {
	dir := t.TempDir()
	stub := &stubGeocoder{responses: map[string]geocode.Result{}}
	job := NewTrashBins(dir, newBinResolver(stub), 1, NewFailureLog(dir))

	rows := [][]string{
		binHeader,
		{"종로구", "없는길 99", "버스정류장 옆", "재활용", "가로변"},
	}

	ds, err := job.Transform(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	matches, err := filepath.Glob(filepath.Join(dir, "geocoding_fail_*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "없는길 99")
}

func TestTrashBins_TransformMissingColumns(t *testing.T) {
	stub := &stubGeocoder{responses: map[string]geocode.Result{}}
	job := NewTrashBins(t.TempDir(), newBinResolver(stub), 1, nil)

	rows := [][]string{
		{"엉뚱한헤더", "다른헤더"},
		{"값", "값"},
	}

	ds, err := job.Transform(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, stub.calls)
}

func TestTrashBins_TransformEmptyInput(t *testing.T) {
	job := NewTrashBins(t.TempDir(), newBinResolver(&stubGeocoder{}), 1, nil)

	ds, err := job.Transform(context.Background(), [][]string(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestTrashBins_ExtractMissingDir(t *testing.T) {
	job := NewTrashBins(filepath.Join(t.TempDir(), "nope"), newBinResolver(&stubGeocoder{}), 1, nil)

	raw, err := job.Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raw.([][]string))
}

func TestTrashBins_ExtractReadsNewestExport(t *testing.T) {
	dir := t.TempDir()
	writeBinXLSX(t, filepath.Join(dir, "bins.xlsx"))

	job := NewTrashBins(dir, newBinResolver(&stubGeocoder{}), 1, nil)

	raw, err := job.Extract(context.Background())
	require.NoError(t, err)

	rows := raw.([][]string)
	require.Len(t, rows, 2)
	assert.Equal(t, binHeader, rows[0])
	assert.Equal(t, "청게천로 14", rows[1][1])
}

// writeBinXLSX creates a spreadsheet shaped like the Seoul export: four
// banner rows, then the header, then one data row.
func writeBinXLSX(t *testing.T, path string) {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		sheet.AddRow().AddCell().Value = "배너"
	}
	for _, row := range [][]string{
		binHeader,
		{"중구", "청게천로 14", "을지로입구역 앞", "일반쓰레기", "가로변"},
	} {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().Value = v
		}
	}
	require.NoError(t, f.Save(path))
}
