package htm

import (
	"fmt"
	"math/rand"

	"github.com/cznic/mathutil"
	"github.com/htm-community/spatial-pooler/utils"
	matrix "github.com/skelterjohn/go.matrix"
	"go.uber.org/zap"
)

/*
 The spatial pooler maps a binary input space onto a sparse set of active
columns. Each column owns one proximal segment whose synapses sample the
column's potential pool. Columns compete on boosted overlap, winners learn,
and duty cycles feed back into boosting so every column stays in use.

The pooler is not safe for concurrent use.
*/
type SpatialPooler struct {
	SpParams

	numInputs        int
	numColumns       int
	potentialRadius  int
	inhibitionRadius int

	potentialPools *DenseBinaryMatrix
	connections    *Connections

	overlaps             []int
	boostedOverlaps      []float64
	boostFactors         []float64
	overlapDutyCycles    []float64
	activeDutyCycles     []float64
	minOverlapDutyCycles []float64

	// column neighborhoods for the current inhibition radius
	neighborhoods       [][]int
	neighborhoodsRadius int

	inputScratch  []bool
	activeScratch []bool

	rnd    *rand.Rand
	logger *zap.Logger

	// Internal state
	IterationNum      int
	IterationLearnNum int
}

type Option func(*SpatialPooler)

//Sets the logger used by the pooler, defaults to a no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(sp *SpatialPooler) {
		if logger != nil {
			sp.logger = logger
		}
	}
}

/*
 Creates a spatial pooler. Parameters are validated first; on success every
column gets its potential pool and initial permanences, drawn from a
generator seeded with params.Seed.
*/
func NewSpatialPooler(params SpParams, opts ...Option) (*SpatialPooler, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("new spatial pooler: %w", err)
	}

	sp := new(SpatialPooler)
	sp.SpParams = params
	sp.InputDimensions = append([]int(nil), params.InputDimensions...)
	sp.ColumnDimensions = append([]int(nil), params.ColumnDimensions...)
	sp.logger = zap.NewNop()
	for _, opt := range opts {
		opt(sp)
	}

	sp.numInputs = utils.ProdInt(sp.InputDimensions)
	sp.numColumns = utils.ProdInt(sp.ColumnDimensions)
	sp.potentialRadius = mathutil.Min(sp.PotentialRadius, sp.numInputs)
	sp.rnd = rand.New(rand.NewSource(sp.Seed))

	sp.overlaps = make([]int, sp.numColumns)
	sp.boostedOverlaps = make([]float64, sp.numColumns)
	sp.boostFactors = utils.MakeSliceFloat64(sp.numColumns, 1.0)
	sp.overlapDutyCycles = make([]float64, sp.numColumns)
	sp.activeDutyCycles = make([]float64, sp.numColumns)
	sp.minOverlapDutyCycles = make([]float64, sp.numColumns)
	sp.inputScratch = make([]bool, sp.numInputs)
	sp.activeScratch = make([]bool, sp.numColumns)
	sp.neighborhoodsRadius = -1

	sp.potentialPools = NewDenseBinaryMatrix(sp.numColumns, sp.numInputs)
	sp.connections = NewConnections(sp.numInputs, sp.numInputs, sp.SynPermConnected,
		sp.SynPermMin, sp.SynPermMax)

	for column := 0; column < sp.numColumns; column++ {
		// each column draws from its own stream so columns can be rebuilt
		// or mapped independently
		columnRnd := rand.New(rand.NewSource(sp.rnd.Int63()))

		potential := sp.mapPotential(column, sp.WrapAround, columnRnd)
		sp.potentialPools.ReplaceRowByIndices(column, potential)

		perms := sp.initPermanence(potential, sp.InitConnectedPct, columnRnd)
		segment := sp.connections.CreateSegment(column)
		for i, input := range potential {
			sp.connections.CreateSynapse(segment, input, perms[i])
		}
		sp.connections.RaisePermanencesToThreshold(segment, sp.SynPermBelowStimulusInc, sp.StimulusThreshold)
	}

	sp.updateInhibitionRadius()

	if sp.SpVerbosity > 0 {
		sp.logger.Info("spatial pooler initialized",
			zap.Int("numInputs", sp.numInputs),
			zap.Int("numColumns", sp.numColumns),
			zap.Int("potentialRadius", sp.potentialRadius),
			zap.Int("inhibitionRadius", sp.inhibitionRadius),
			zap.Int("potentialSynapses", sp.potentialPools.TotalNonZeroCount()),
			zap.Int("connectedSynapses", utils.SumSliceInt(sp.ConnectedCounts())),
			zap.Reflect("params", sp.SpParams))
	}

	return sp, nil
}

//Replaces the logger
func (sp *SpatialPooler) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp.logger = logger
}

/*
 Dense runner: computes the winning columns for inputVector and writes them
into activeArray. With learn set the winners learn (see Learn). Without it
only IterationNum advances and columns that have never been active are
removed from the output, since their connections are still random.
*/
func (sp *SpatialPooler) Compute(inputVector []bool, learn bool, activeArray []bool) {
	if len(inputVector) != sp.numInputs {
		panic(fmt.Sprintf("input length %v != numInputs %v", len(inputVector), sp.numInputs))
	}
	if len(activeArray) != sp.numColumns {
		panic(fmt.Sprintf("active array length %v != numColumns %v", len(activeArray), sp.numColumns))
	}

	activeInputs := utils.OnIndices(inputVector)
	activeColumns := sp.ActiveColumns(activeInputs)

	if learn {
		sp.learn(inputVector, activeColumns, sp.overlaps)
	} else {
		sp.IterationNum++
		activeColumns = sp.stripNeverLearned(activeColumns)
	}

	utils.FillSliceBool(activeArray, false)
	for _, c := range activeColumns {
		activeArray[c] = true
	}
}

//Removes columns whose active duty cycle is still zero
func (sp *SpatialPooler) stripNeverLearned(activeColumns []int) []int {
	result := make([]int, 0, len(activeColumns))
	for _, c := range activeColumns {
		if sp.activeDutyCycles[c] > 0 {
			result = append(result, c)
		}
	}
	return result
}

//Sets inputScratch from sparse active inputs
func (sp *SpatialPooler) denseInputs(activeInputs []int) []bool {
	utils.FillSliceBool(sp.inputScratch, false)
	for _, i := range activeInputs {
		if i < 0 || i >= sp.numInputs {
			panic(fmt.Sprintf("active input %v out of range [0, %v)", i, sp.numInputs))
		}
		sp.inputScratch[i] = true
	}
	return sp.inputScratch
}

func (sp *SpatialPooler) NumInputs() int {
	return sp.numInputs
}

func (sp *SpatialPooler) NumColumns() int {
	return sp.numColumns
}

func (sp *SpatialPooler) ConstantInitPermanence() bool {
	return sp.SpParams.ConstantInitPermanence
}

func (sp *SpatialPooler) InitPermanence() float64 {
	return sp.SpParams.InitPermanence
}

func (sp *SpatialPooler) InhibitionRadius() int {
	return sp.inhibitionRadius
}

//Returns the connection store. Callers must not create segments on it.
func (sp *SpatialPooler) Connections() *Connections {
	return sp.connections
}

//Returns a copy of the potential pool of column
func (sp *SpatialPooler) PotentialPool(column int) []int {
	return sp.potentialPools.GetRowIndices(column)
}

//Returns a copy of all potential pools, one row per column
func (sp *SpatialPooler) PotentialPools() *DenseBinaryMatrix {
	return sp.potentialPools.Copy()
}

//Returns the permanences of column as a dense slice over the inputs,
//inputs outside the potential pool are 0
func (sp *SpatialPooler) Permanences(column int) []float64 {
	result := make([]float64, sp.numInputs)
	for _, syn := range sp.connections.SynapsesForSegment(column) {
		data := sp.connections.DataForSynapse(syn)
		result[data.Presynaptic] = data.Permanence
	}
	return result
}

//Returns the connected synapse count of every column
func (sp *SpatialPooler) ConnectedCounts() []int {
	result := make([]int, sp.numColumns)
	for c := range result {
		result[c] = sp.connections.ConnectedCount(c)
	}
	return result
}

//Returns all permanences as a sparse numColumns x numInputs matrix
func (sp *SpatialPooler) PermanenceMatrix() *matrix.SparseMatrix {
	elements := make(map[int]float64, sp.connections.NumSynapses())
	m := matrix.MakeSparseMatrix(elements, sp.numColumns, sp.numInputs)
	for c := 0; c < sp.numColumns; c++ {
		for _, syn := range sp.connections.SynapsesForSegment(c) {
			data := sp.connections.DataForSynapse(syn)
			if data.Permanence != 0 {
				m.Set(c, data.Presynaptic, data.Permanence)
			}
		}
	}
	return m
}

//Overlaps from the last ActiveColumns call
func (sp *SpatialPooler) Overlaps() []int {
	return append([]int(nil), sp.overlaps...)
}

//Boosted overlaps from the last ActiveColumns call
func (sp *SpatialPooler) BoostedOverlaps() []float64 {
	return append([]float64(nil), sp.boostedOverlaps...)
}

func (sp *SpatialPooler) BoostFactors() []float64 {
	return append([]float64(nil), sp.boostFactors...)
}

func (sp *SpatialPooler) OverlapDutyCycles() []float64 {
	return append([]float64(nil), sp.overlapDutyCycles...)
}

func (sp *SpatialPooler) ActiveDutyCycles() []float64 {
	return append([]float64(nil), sp.activeDutyCycles...)
}

func (sp *SpatialPooler) MinOverlapDutyCycles() []float64 {
	return append([]float64(nil), sp.minOverlapDutyCycles...)
}
