package etl

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureLog_Write(t *testing.T) {
	dir := t.TempDir()
	fl := NewFailureLog(dir)

	path := fl.Write(
		[]string{"city_name", "address", "location_desc"},
		[][]string{
			{"중구", "청게천로 14", "을지로입구역 3번 출구"},
			{"종로구", "세종대로 지하 175", ""},
		},
	)
	require.NotEmpty(t, path)

	want := filepath.Join(dir, fmt.Sprintf("geocoding_fail_%s.csv", time.Now().UTC().Format("20060102")))
	assert.Equal(t, want, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, data[:3])
	assert.Contains(t, string(data), "city_name,address,location_desc")
	assert.Contains(t, string(data), "청게천로 14")
}

func TestFailureLog_EmptyRowsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	fl := NewFailureLog(dir)

	path := fl.Write([]string{"city_name"}, nil)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFailureLog_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	fl := NewFailureLog(dir)

	path := fl.Write([]string{"address"}, [][]string{{"세종대로 175"}})
	require.NotEmpty(t, path)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
