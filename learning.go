//
// Code related to learning and homeostasis
//

package htm

import (
	"fmt"
	"math"

	"github.com/cznic/mathutil"
	"github.com/gonum/floats"
	"github.com/htm-community/spatial-pooler/utils"
	"go.uber.org/zap"
)

/*
 Learns from one input: winners in activeColumns move their permanences
toward activeInputs and duty cycles are updated. Every UpdatePeriod
iterations the inhibition radius, minimum duty cycles and boost factors are
recomputed and weak columns are bumped. Panics on out of range indices.
*/
func (sp *SpatialPooler) Learn(activeInputs []int, activeColumns []int) {
	sp.calculateOverlap(activeInputs)
	sp.learn(sp.denseInputs(activeInputs), activeColumns, sp.overlaps)
}

func (sp *SpatialPooler) learn(inputs []bool, activeColumns []int, overlaps []int) {
	for _, c := range activeColumns {
		if c < 0 || c >= sp.numColumns {
			panic(fmt.Sprintf("active column %v out of range [0, %v)", c, sp.numColumns))
		}
	}

	sp.IterationNum++
	sp.IterationLearnNum++

	sp.updateDutyCycles(overlaps, activeColumns)
	sp.adaptSynapses(inputs, activeColumns)

	if sp.isUpdateRound() {
		sp.updateInhibitionRadius()
		sp.updateMinDutyCycles()
		sp.bumpUpWeakColumns()
		sp.updateBoostFactors()

		if sp.SpVerbosity > 0 {
			sp.logger.Debug("update round",
				zap.Int("iteration", sp.IterationNum),
				zap.Int("inhibitionRadius", sp.inhibitionRadius),
				zap.Float64("meanActiveDutyCycle", floats.Sum(sp.activeDutyCycles)/float64(sp.numColumns)),
				zap.Float64("maxBoost", floats.Max(sp.boostFactors)))
		}
	}
}

func (sp *SpatialPooler) isUpdateRound() bool {
	return sp.IterationNum%sp.UpdatePeriod == 0
}

/*
 Moving average update: value += (observation - value) / period, where the
period grows with the iteration count until it reaches DutyCyclePeriod.
*/
func (sp *SpatialPooler) updateDutyCycles(overlaps []int, activeColumns []int) {
	period := float64(mathutil.Min(sp.DutyCyclePeriod, sp.IterationNum))

	active := sp.activeScratch
	utils.FillSliceBool(active, false)
	for _, c := range activeColumns {
		active[c] = true
	}

	for c := 0; c < sp.numColumns; c++ {
		overlapped := 0.0
		if overlaps[c] > 0 {
			overlapped = 1.0
		}
		won := 0.0
		if active[c] {
			won = 1.0
		}
		sp.overlapDutyCycles[c] += (overlapped - sp.overlapDutyCycles[c]) / period
		sp.activeDutyCycles[c] += (won - sp.activeDutyCycles[c]) / period
	}
}

//Hebbian update of every winner, followed by raising the winner back to
//StimulusThreshold connected synapses
func (sp *SpatialPooler) adaptSynapses(inputs []bool, activeColumns []int) {
	for _, c := range activeColumns {
		sp.connections.AdaptSegment(c, inputs, sp.SynPermActiveInc, sp.SynPermInactiveDec, sp.SynPermTrimThreshold)
		sp.connections.RaisePermanencesToThreshold(c, sp.SynPermBelowStimulusInc, sp.StimulusThreshold)
	}
}

//Columns whose overlap duty cycle is below its minimum get every potential
//synapse raised by SynPermBelowStimulusInc
func (sp *SpatialPooler) bumpUpWeakColumns() {
	for c := 0; c < sp.numColumns; c++ {
		if sp.overlapDutyCycles[c] < sp.minOverlapDutyCycles[c] {
			sp.connections.BumpSegment(c, sp.SynPermBelowStimulusInc)
		}
	}
}

/*
 boost = exp((target - activeDutyCycle) * BoostStrength). With global
inhibition the target is LocalAreaDensity, otherwise the mean active duty
cycle of the column's inhibition neighborhood. Factors are capped at
math.MaxFloat64.
*/
func (sp *SpatialPooler) updateBoostFactors() {
	if sp.BoostStrength == 0 {
		utils.FillSliceFloat64(sp.boostFactors, 1.0)
		return
	}

	if sp.useGlobalInhibition() {
		for c := range sp.boostFactors {
			sp.boostFactors[c] = sp.boostFactor(sp.LocalAreaDensity, sp.activeDutyCycles[c])
		}
		return
	}

	neighborhoods := sp.inhibitionNeighborhoods()
	for c := range sp.boostFactors {
		nb := neighborhoods[c]
		target := floats.Sum(utils.SubsetSliceFloat64(sp.activeDutyCycles, nb)) / float64(len(nb))
		sp.boostFactors[c] = sp.boostFactor(target, sp.activeDutyCycles[c])
	}
}

//Boost of one column, capped at math.MaxFloat64 so a zero overlap stays 0
func (sp *SpatialPooler) boostFactor(target, dutyCycle float64) float64 {
	return math.Min(math.Exp((target-dutyCycle)*sp.BoostStrength), math.MaxFloat64)
}

/*
 With global inhibition the radius covers the whole column space. Otherwise
it is derived from the average connected span of the columns, scaled into
column space: radius = round((diameter - 1) / 2), at least 1.
*/
func (sp *SpatialPooler) updateInhibitionRadius() {
	if sp.GlobalInhibition {
		sp.inhibitionRadius = utils.MaxSliceInt(sp.ColumnDimensions)
		return
	}

	spans := make([]float64, sp.numColumns)
	for c := range spans {
		spans[c] = sp.avgConnectedSpanForColumn(c)
	}
	avgSpan := floats.Sum(spans) / float64(sp.numColumns)
	diameter := avgSpan * sp.avgColumnsPerInput()
	radius := math.Max((diameter-1.0)/2.0, 1.0)
	sp.inhibitionRadius = utils.RoundInt(radius)
}

/*
 Average, over the input dimensions, of the extent covered by the column's
connected synapses. A column without connected synapses has span 0.
*/
func (sp *SpatialPooler) avgConnectedSpanForColumn(column int) float64 {
	rank := len(sp.InputDimensions)
	minCoord := make([]int, rank)
	maxCoord := make([]int, rank)
	found := false

	for _, syn := range sp.connections.SynapsesForSegment(column) {
		data := sp.connections.DataForSynapse(syn)
		if data.Permanence < sp.SynPermConnected {
			continue
		}
		coords := coordinatesFromIndex(data.Presynaptic, sp.InputDimensions)
		if !found {
			copy(minCoord, coords)
			copy(maxCoord, coords)
			found = true
			continue
		}
		for i, v := range coords {
			minCoord[i] = mathutil.Min(minCoord[i], v)
			maxCoord[i] = mathutil.Max(maxCoord[i], v)
		}
	}

	if !found {
		return 0
	}
	spans := make([]float64, rank)
	for i := range spans {
		spans[i] = float64(maxCoord[i] - minCoord[i] + 1)
	}
	return floats.Sum(spans) / float64(rank)
}

//Average ratio of column dimension to input dimension
func (sp *SpatialPooler) avgColumnsPerInput() float64 {
	ratios := make([]float64, len(sp.ColumnDimensions))
	for i := range ratios {
		ratios[i] = float64(sp.ColumnDimensions[i]) / float64(sp.InputDimensions[i])
	}
	return floats.Sum(ratios) / float64(len(ratios))
}

/*
 Sets each column's minimum overlap duty cycle to MinPctOverlapDutyCycles
times the largest active duty cycle among the columns it competes with: the
whole region under global inhibition, its neighborhood otherwise.
*/
func (sp *SpatialPooler) updateMinDutyCycles() {
	if sp.useGlobalInhibition() {
		utils.FillSliceFloat64(sp.minOverlapDutyCycles,
			sp.MinPctOverlapDutyCycles*floats.Max(sp.activeDutyCycles))
		return
	}

	neighborhoods := sp.inhibitionNeighborhoods()
	for c := range sp.minOverlapDutyCycles {
		maxActive := floats.Max(utils.SubsetSliceFloat64(sp.activeDutyCycles, neighborhoods[c]))
		sp.minOverlapDutyCycles[c] = sp.MinPctOverlapDutyCycles * maxActive
	}
}
