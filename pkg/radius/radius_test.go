package radius

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vladislav-Dmitriev/well-net/pkg/firstrow"
	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

var params = Params{
	Angles:      firstrow.Angles{Vertical: 10, MaxOverlapPercent: 30, HorizontalT1: 5, HorizontalT3: 5},
	MaxDistance: 1000,
}

func vertical(name string, x, y float64) well.Well {
	p := geo.Pt(x, y)
	return well.Well{Name: name, Kind: well.Vertical, Role: well.Producer, Head: p, Toe: p}
}

func TestEstimateFallsBackToMaxDistance(t *testing.T) {
	wells := []well.Well{vertical("a", 0, 0), vertical("b", 5000, 0), vertical("c", 0, 5000)}
	res, err := Estimate(context.Background(), wells, params)
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.Equal(t, 1000.0, res.MeanRadius)
	assert.Equal(t, 1000.0, res.MinDistance("a"))
}

func TestEstimateEmptyHorizon(t *testing.T) {
	res, err := Estimate(context.Background(), nil, params)
	require.NoError(t, err)
	assert.Equal(t, params.MaxDistance, res.MeanRadius)
}

func TestEstimateLine(t *testing.T) {
	// a, b, c on a line 200 m apart: c hides behind b when seen from a.
	wells := []well.Well{vertical("a", 0, 0), vertical("b", 200, 0), vertical("c", 400, 0)}
	res, err := Estimate(context.Background(), wells, params)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, res.Wells["a"].FirstRow)
	assert.Equal(t, []string{"a", "c"}, res.Wells["b"].FirstRow)
	assert.Equal(t, []string{"b"}, res.Wells["c"].FirstRow)
	assert.InDelta(t, 200, res.MeanRadius, 1e-9)
	assert.InDelta(t, 200, res.MinDistance("b"), 1e-9)
	assert.False(t, res.FellBack)
}

func TestEstimateMixedDistances(t *testing.T) {
	wells := []well.Well{vertical("a", 0, 0), vertical("b", 300, 0), vertical("c", 0, 600)}
	res, err := Estimate(context.Background(), wells, params)
	require.NoError(t, err)

	a := res.Wells["a"]
	assert.ElementsMatch(t, []string{"b", "c"}, a.FirstRow)
	assert.InDelta(t, 450, a.MeanDistance, 1e-9)
	assert.InDelta(t, 300, a.MinDistance, 1e-9)
	assert.Greater(t, res.MeanRadius, 300.0)
}

func TestEstimateRejectsBadParams(t *testing.T) {
	_, err := Estimate(context.Background(), nil, Params{Angles: params.Angles})
	assert.True(t, validation.IsConfigurationError(err))

	bad := params
	bad.Angles.Vertical = 95
	_, err = Estimate(context.Background(), nil, bad)
	assert.True(t, validation.IsConfigurationError(err))
}

func TestEstimateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Estimate(ctx, []well.Well{vertical("a", 0, 0)}, params)
	assert.ErrorIs(t, err, context.Canceled)
}
