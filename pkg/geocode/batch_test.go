package geocode

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAll_PreservesLengthAndOrder(t *testing.T) {
	const n = 250

	responses := make(map[string]Result, n)
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{City: "중구", Address: fmt.Sprintf("테스트로 %d", i)}
		responses[fmt.Sprintf("서울특별시 중구 테스트로 %d", i)] = Result{
			Lat:     float64(i),
			Lng:     float64(-i),
			Matched: true,
		}
	}

	fc := &fakeClient{responses: responses}
	r := newTestResolver(fc)

	results := r.ResolveAll(context.Background(), records, 20)
	require.Len(t, results, n)

	for i, res := range results {
		assert.True(t, res.Matched, "record %d", i)
		assert.InDelta(t, float64(i), res.Lat, 1e-9, "record %d out of order", i)
	}
	assert.Equal(t, n, fc.callCount())
}

func TestResolveAll_EmptyInput(t *testing.T) {
	fc := &fakeClient{}
	r := newTestResolver(fc)

	results := r.ResolveAll(context.Background(), nil, 20)
	assert.Empty(t, results)
	assert.Equal(t, 0, fc.callCount())
}

func TestResolveAll_PreTrippedIssuesZeroCalls(t *testing.T) {
	records := make([]Record, 10)
	for i := range records {
		records[i] = Record{City: "중구", Address: fmt.Sprintf("테스트로 %d", i)}
	}

	fc := &fakeClient{}
	r := newTestResolver(fc)
	r.Breaker().Trip()

	results := r.ResolveAll(context.Background(), records, 4)
	require.Len(t, results, 10)
	for _, res := range results {
		assert.False(t, res.Matched)
	}
	assert.Equal(t, 0, fc.callCount())
}

func TestResolveAll_AuthFailureCircuitBreaksBatch(t *testing.T) {
	records := make([]Record, 50)
	for i := range records {
		records[i] = Record{City: "중구", Address: fmt.Sprintf("테스트로 %d", i)}
	}

	fc := &fakeClient{authAll: true}
	r := newTestResolver(fc)

	// One worker makes the cutoff deterministic: the first record trips the
	// breaker, all remaining records must be skipped without a call.
	results := r.ResolveAll(context.Background(), records, 1)
	require.Len(t, results, 50)
	for _, res := range results {
		assert.False(t, res.Matched)
	}
	assert.True(t, r.Breaker().Tripped())
	assert.Equal(t, 1, fc.callCount())
}

func TestResolveAll_DefaultWorkerWidth(t *testing.T) {
	fc := &fakeClient{responses: map[string]Result{
		"서울특별시 중구 테스트로 0": {Lat: 1, Lng: 2, Matched: true},
	}}
	r := newTestResolver(fc)

	results := r.ResolveAll(context.Background(), []Record{{City: "중구", Address: "테스트로 0"}}, 0)
	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
}
