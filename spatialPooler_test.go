package htm

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/htm-community/spatial-pooler/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func getConnected(perm []float64, sp *SpatialPooler) (int, []bool) {
	numcon := 0
	connected := make([]bool, len(perm))
	for i := 0; i < len(perm); i++ {
		if perm[i] >= sp.SynPermConnected {
			numcon++
			connected[i] = true
		} else {
			connected[i] = false
		}
	}

	return numcon, connected
}

func newTestPooler(t *testing.T, params SpParams) *SpatialPooler {
	sp, err := NewSpatialPooler(params)
	require.NoError(t, err)
	return sp
}

func TestPermanenceInit(t *testing.T) {
	sp := SpatialPooler{}
	sp.SynPermConnected = 0.1
	sp.SynPermActiveInc = 0.1
	sp.SynPermInactiveDec = 0.01
	sp.SynPermMin = 0
	sp.SynPermMax = 1
	rnd := rand.New(rand.NewSource(42))

	potential := []int{0, 1, 2, 8, 9}
	perm := sp.initPermanence(potential, 1.0, rnd)
	numcon, _ := getConnected(perm, &sp)
	assert.Equal(t, 5, numcon)

	maxThresh := sp.SynPermConnected + sp.SynPermActiveInc/4
	for i := 0; i < len(perm); i++ {
		if perm[i] > maxThresh {
			t.Errorf("perm %v was %v higher than threshold", i, perm[i])
		}
	}

	perm = sp.initPermanence(potential, 0, rnd)
	numcon, _ = getConnected(perm, &sp)
	assert.Equal(t, 0, numcon)

	minThresh := sp.SynPermConnected - sp.SynPermInactiveDec/4
	for i := 0; i < len(perm); i++ {
		if perm[i] < minThresh {
			t.Errorf("perm %v was %v less than min threshold", i, perm[i])
		}
	}

	potential = make([]int, 100)
	for i := range potential {
		potential[i] = i
	}
	perm = sp.initPermanence(potential, 0.5, rnd)
	numcon, _ = getConnected(perm, &sp)
	assert.True(t, numcon > 0)
	assert.True(t, numcon < len(potential))
}

func TestPermanenceInitConstant(t *testing.T) {
	sp := SpatialPooler{}
	sp.SpParams.ConstantInitPermanence = true
	sp.SpParams.InitPermanence = 0.21
	sp.SynPermConnected = 0.1

	// the generator must not be touched
	perm := sp.initPermanence([]int{3, 4, 5}, 0.5, nil)
	assert.Equal(t, []float64{0.21, 0.21, 0.21}, perm)
}

func TestPermanenceInitNoDecrement(t *testing.T) {
	sp := SpatialPooler{}
	sp.SynPermConnected = 0.1
	sp.SynPermInactiveDec = 0
	sp.SynPermMax = 1
	rnd := rand.New(rand.NewSource(1))

	perm := sp.initPermanence([]int{0, 1, 2, 3}, 0, rnd)
	numcon, _ := getConnected(perm, &sp)
	assert.Equal(t, 0, numcon)
}

func TestStripNever(t *testing.T) {
	sp := SpatialPooler{}

	sp.activeDutyCycles = []float64{0.5, 0.1, 0, 0.2, 0.4, 0}
	stripped := sp.stripNeverLearned([]int{0, 1, 2, 4})
	assert.Equal(t, []int{0, 1, 4}, stripped)

	sp.activeDutyCycles = []float64{0.9, 0, 0, 0, 0.4, 0.3}
	stripped = sp.stripNeverLearned([]int{0, 1, 2, 3, 4, 5})
	assert.Equal(t, []int{0, 4, 5}, stripped)

	sp.activeDutyCycles = []float64{0, 0, 0, 0, 0, 0}
	stripped = sp.stripNeverLearned([]int{0, 1, 2, 3, 4, 5})
	if len(stripped) != 0 {
		t.Errorf("Expected empty stripped was %v", stripped)
	}

	sp.activeDutyCycles = []float64{1, 1, 1, 1, 1, 1}
	stripped = sp.stripNeverLearned([]int{0, 1, 2, 3, 4, 5})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, stripped)
}

func TestNewSpatialPoolerRankMismatch(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{10}
	params.ColumnDimensions = []int{5, 5}

	sp, err := NewSpatialPooler(params)
	assert.Nil(t, sp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	var pe *ParamError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "ColumnDimensions", pe.Field)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	params := NewSpParams()
	params.PotentialPct = 0
	params.LocalAreaDensity = 0.9
	params.DutyCyclePeriod = 0
	params.SynPermTrimThreshold = 0.5

	err := params.Validate()
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 4)
	for _, e := range errs {
		assert.True(t, errors.Is(e, ErrInvalidParams))
	}

	assert.NoError(t, NewSpParams().Validate())
}

func TestValidateDimensions(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{}
	params.ColumnDimensions = []int{4, 0}

	err := params.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestAllInputsConnected(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{100}
	params.ColumnDimensions = []int{50}
	params.PotentialRadius = 100
	params.PotentialPct = 1
	params.LocalAreaDensity = 0.1
	params.StimulusThreshold = 0

	for _, wrap := range []bool{true, false} {
		params.WrapAround = wrap
		sp := newTestPooler(t, params)

		for c := 0; c < sp.NumColumns(); c++ {
			assert.Len(t, sp.PotentialPool(c), 100)
		}

		activeInputs := make([]int, 100)
		for i := range activeInputs {
			activeInputs[i] = i
		}
		winners := sp.ActiveColumns(activeInputs)
		assert.Len(t, winners, 5, "wrapAround %v", wrap)
	}
}

func TestConstructionInvariants(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{8, 12}
	params.ColumnDimensions = []int{6, 6}
	params.PotentialRadius = 3
	params.PotentialPct = 0.6
	params.StimulusThreshold = 4
	params.GlobalInhibition = false
	params.LocalAreaDensity = 0.1

	for _, wrap := range []bool{true, false} {
		params.WrapAround = wrap
		sp := newTestPooler(t, params)

		for c := 0; c < sp.NumColumns(); c++ {
			pool := sp.PotentialPool(c)
			require.NotEmpty(t, pool)
			perms := sp.Permanences(c)

			numcon, _ := getConnected(perms, sp)
			assert.True(t, numcon >= params.StimulusThreshold || numcon == len(pool))
			assert.Equal(t, numcon, sp.ConnectedCounts()[c])

			for i, p := range perms {
				assert.True(t, p >= params.SynPermMin && p <= params.SynPermMax)
				if !utils.ContainsInt(i, pool) {
					assert.Equal(t, 0.0, p, "input %v outside the pool of column %v", i, c)
				}
			}
		}
		assert.True(t, sp.InhibitionRadius() >= 1)
	}
}

func TestDeterministicSeed(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{40}
	params.ColumnDimensions = []int{60}
	params.PotentialRadius = 10
	params.Seed = 7

	a := newTestPooler(t, params)
	b := newTestPooler(t, params)
	for c := 0; c < a.NumColumns(); c++ {
		assert.Equal(t, a.PotentialPool(c), b.PotentialPool(c))
		assert.Equal(t, a.Permanences(c), b.Permanences(c))
	}

	rnd := rand.New(rand.NewSource(3))
	ya := make([]bool, a.NumColumns())
	yb := make([]bool, b.NumColumns())
	for i := 0; i < 20; i++ {
		input := make([]bool, a.NumInputs())
		for j := range input {
			input[j] = rnd.Float64() > 0.7
		}
		a.Compute(input, true, ya)
		b.Compute(input, true, yb)
		assert.Equal(t, ya, yb)
	}
	for col := 0; col < a.NumColumns(); col++ {
		assert.Equal(t, a.Permanences(col), b.Permanences(col), "column %v", col)
	}
	assert.Equal(t, a.BoostFactors(), b.BoostFactors())
	assert.Equal(t, a.ActiveDutyCycles(), b.ActiveDutyCycles())

	params.Seed = 8
	c := newTestPooler(t, params)
	differs := false
	for col := 0; col < a.NumColumns(); col++ {
		if !assert.ObjectsAreEqual(a.PotentialPool(col), c.PotentialPool(col)) {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestActiveColumnsHasNoSideEffects(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{30}
	params.ColumnDimensions = []int{40}
	sp := newTestPooler(t, params)

	before := make([][]float64, sp.NumColumns())
	for c := range before {
		before[c] = sp.Permanences(c)
	}
	first := sp.ActiveColumns([]int{1, 4, 7, 9, 20})
	second := sp.ActiveColumns([]int{1, 4, 7, 9, 20})
	assert.Equal(t, first, second)
	assert.Equal(t, 0, sp.IterationNum)
	for c := range before {
		assert.Equal(t, before[c], sp.Permanences(c))
	}

	assert.Panics(t, func() { sp.ActiveColumns([]int{30}) })
	assert.Panics(t, func() { sp.ActiveColumns([]int{-1}) })
}

func TestGlobalInhibitionTieBreak(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{10}
	params.ColumnDimensions = []int{10}
	params.LocalAreaDensity = 0.3
	params.StimulusThreshold = 1
	sp := newTestPooler(t, params)

	sp.overlaps = []int{2, 2, 0, 5, 2, 2, 1, 2, 0, 2}
	for c, o := range sp.overlaps {
		sp.boostedOverlaps[c] = float64(o)
	}
	assert.Equal(t, []int{0, 1, 3}, sp.inhibitColumns())

	// fewer eligible columns than requested winners
	sp.overlaps = []int{0, 0, 0, 0, 0, 0, 0, 3, 0, 0}
	for c, o := range sp.overlaps {
		sp.boostedOverlaps[c] = float64(o)
	}
	assert.Equal(t, []int{7}, sp.inhibitColumns())
}

func TestLocalInhibition(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{10}
	params.ColumnDimensions = []int{10}
	params.PotentialRadius = 2
	params.GlobalInhibition = false
	params.WrapAround = false
	params.LocalAreaDensity = 0.34
	params.StimulusThreshold = 1
	sp := newTestPooler(t, params)

	sp.inhibitionRadius = 1
	sp.overlaps = []int{1, 2, 3, 3, 2, 1, 0, 5, 5, 5}
	for c, o := range sp.overlaps {
		sp.boostedOverlaps[c] = float64(o)
	}

	// 9 wins {8,9} since the tied column 8 lost in its own neighborhood
	assert.Equal(t, []int{2, 7, 9}, sp.inhibitColumns())
	assert.Equal(t, 1, sp.neighborhoodsRadius)
	assert.Equal(t, []int{6, 7, 8}, sp.neighborhoods[7])
}

func TestInhibitionRadius(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{100}
	params.ColumnDimensions = []int{100}
	params.PotentialRadius = 5
	params.PotentialPct = 1
	params.ConstantInitPermanence = true
	params.InitPermanence = 0.5
	params.WrapAround = false

	sp := newTestPooler(t, params)
	assert.Equal(t, 100, sp.InhibitionRadius())

	params.GlobalInhibition = false
	sp = newTestPooler(t, params)

	// average span (90*11 + 2*(6+7+8+9+10)) / 100 = 10.7
	assert.InDelta(t, 11.0, sp.avgConnectedSpanForColumn(50), 1e-9)
	assert.InDelta(t, 6.0, sp.avgConnectedSpanForColumn(0), 1e-9)
	assert.Equal(t, 5, sp.InhibitionRadius())

	params.ColumnDimensions = []int{200}
	sp = newTestPooler(t, params)
	assert.InDelta(t, 2.0, sp.avgColumnsPerInput(), 1e-9)
	assert.True(t, sp.InhibitionRadius() >= 1)
}

func TestAvgConnectedSpanNoConnections(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{20}
	params.ColumnDimensions = []int{20}
	params.ConstantInitPermanence = true
	params.InitPermanence = 0
	params.GlobalInhibition = false
	sp := newTestPooler(t, params)

	assert.Equal(t, 0.0, sp.avgConnectedSpanForColumn(3))
	assert.Equal(t, 1, sp.InhibitionRadius())
}

func TestComputeValidatesLengths(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{10}
	params.ColumnDimensions = []int{20}
	sp := newTestPooler(t, params)

	assert.Panics(t, func() { sp.Compute(make([]bool, 9), true, make([]bool, 20)) })
	assert.Panics(t, func() { sp.Compute(make([]bool, 10), true, make([]bool, 21)) })
	assert.Panics(t, func() { sp.Learn([]int{0}, []int{20}) })
}

func TestParallelOverlapMatchesSerial(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{16, 16}
	params.ColumnDimensions = []int{20, 20}
	params.PotentialRadius = 4
	serial := newTestPooler(t, params)

	params.Workers = 4
	parallel := newTestPooler(t, params)

	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 10; i++ {
		var activeInputs []int
		for j := 0; j < serial.NumInputs(); j++ {
			if rnd.Float64() > 0.8 {
				activeInputs = append(activeInputs, j)
			}
		}
		assert.Equal(t, serial.ActiveColumns(activeInputs), parallel.ActiveColumns(activeInputs))
		assert.Equal(t, serial.Overlaps(), parallel.Overlaps())
	}
}

func TestPermanenceMatrix(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{12}
	params.ColumnDimensions = []int{8}
	params.PotentialRadius = 3
	sp := newTestPooler(t, params)

	m := sp.PermanenceMatrix()
	assert.Equal(t, sp.NumColumns(), m.Rows())
	assert.Equal(t, sp.NumInputs(), m.Cols())
	for c := 0; c < sp.NumColumns(); c++ {
		perms := sp.Permanences(c)
		for i := range perms {
			assert.Equal(t, perms[i], m.Get(c, i))
		}
	}
}

func TestVerboseLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	params := NewSpParams()
	params.InputDimensions = []int{10}
	params.ColumnDimensions = []int{10}
	params.SpVerbosity = 1
	params.UpdatePeriod = 2

	sp, err := NewSpatialPooler(params, WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("spatial pooler initialized").Len())

	y := make([]bool, sp.NumColumns())
	input := utils.Make1DBool([]int{1, 0, 1, 1, 0, 0, 0, 1, 0, 1})
	sp.Compute(input, true, y)
	sp.Compute(input, true, y)
	assert.Equal(t, 1, logs.FilterMessage("update round").Len())
}

func TestDutyCycleMovingAverage(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{5}
	params.ColumnDimensions = []int{5}
	params.DutyCyclePeriod = 4
	sp := newTestPooler(t, params)

	sp.IterationNum = 1
	sp.updateDutyCycles([]int{1, 0, 2, 0, 0}, []int{0})
	assert.Equal(t, []float64{1, 0, 1, 0, 0}, sp.OverlapDutyCycles())
	assert.Equal(t, []float64{1, 0, 0, 0, 0}, sp.ActiveDutyCycles())

	sp.IterationNum = 10
	sp.updateDutyCycles([]int{0, 0, 3, 0, 1}, []int{2})
	overlap := sp.OverlapDutyCycles()
	active := sp.ActiveDutyCycles()
	assert.InDelta(t, 0.75, overlap[0], 1e-9)
	assert.InDelta(t, 1.0, overlap[2], 1e-9)
	assert.InDelta(t, 0.25, overlap[4], 1e-9)
	assert.InDelta(t, 0.75, active[0], 1e-9)
	assert.InDelta(t, 0.25, active[2], 1e-9)
	for _, v := range active {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestBumpUpWeakColumns(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{10}
	params.ColumnDimensions = []int{3}
	params.PotentialRadius = 10
	params.PotentialPct = 1
	sp := newTestPooler(t, params)

	before0 := sp.Permanences(0)
	before1 := sp.Permanences(1)
	sp.overlapDutyCycles = []float64{0, 0.5, 0.3}
	sp.minOverlapDutyCycles = []float64{0.1, 0.1, 0.3}
	sp.bumpUpWeakColumns()

	after0 := sp.Permanences(0)
	for i := range before0 {
		assert.InDelta(t, math.Min(before0[i]+params.SynPermBelowStimulusInc, 1), after0[i], 1e-9)
	}
	assert.Equal(t, before1, sp.Permanences(1))
}

func TestUpdateMinDutyCycles(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{6}
	params.ColumnDimensions = []int{6}
	params.MinPctOverlapDutyCycles = 0.5
	sp := newTestPooler(t, params)

	sp.activeDutyCycles = []float64{0.1, 0.4, 0.2, 0, 0.3, 0.05}
	sp.updateMinDutyCycles()
	for _, v := range sp.MinOverlapDutyCycles() {
		assert.InDelta(t, 0.2, v, 1e-9)
	}

	params.GlobalInhibition = false
	params.PotentialRadius = 1
	params.WrapAround = false
	params.ConstantInitPermanence = true
	params.InitPermanence = 0.5
	params.PotentialPct = 1
	sp = newTestPooler(t, params)
	require.Equal(t, 1, sp.InhibitionRadius())

	sp.activeDutyCycles = []float64{0.1, 0.4, 0.2, 0, 0.3, 0.05}
	sp.updateMinDutyCycles()
	expected := []float64{0.2, 0.2, 0.2, 0.15, 0.15, 0.15}
	for c, v := range sp.MinOverlapDutyCycles() {
		assert.InDelta(t, expected[c], v, 1e-9, "column %v", c)
	}
}

func TestPotentialPools(t *testing.T) {
	params := NewSpParams()
	params.InputDimensions = []int{6}
	params.ColumnDimensions = []int{3}
	params.PotentialRadius = 1
	params.PotentialPct = 1
	params.WrapAround = false
	sp := newTestPooler(t, params)

	pools := sp.PotentialPools()
	assert.Equal(t, "111000\n001110\n000011\n", pools.ToString())
	for c := 0; c < sp.NumColumns(); c++ {
		assert.Equal(t, pools.RowCount(c), len(sp.PotentialPool(c)))
	}

	pools.Set(0, 5, true)
	assert.Equal(t, []int{0, 1, 2}, sp.PotentialPool(0))
}
