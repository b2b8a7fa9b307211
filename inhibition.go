//
// Code related to overlap computation and column competition
//

package htm

import (
	"sort"

	"github.com/cznic/mathutil"
	"github.com/htm-community/spatial-pooler/utils"
	"github.com/sourcegraph/conc/pool"
)

/*
 Returns the winning columns, ascending, for the given active input indices.
Overlaps and boosted overlaps are recomputed, no learning state is changed.
Panics if an input index is outside [0, NumInputs).
*/
func (sp *SpatialPooler) ActiveColumns(activeInputs []int) []int {
	sp.calculateOverlap(activeInputs)
	for c, overlap := range sp.overlaps {
		sp.boostedOverlaps[c] = float64(overlap) * sp.boostFactors[c]
	}
	return sp.inhibitColumns()
}

/*
 Fills sp.overlaps with the number of connected synapses on active inputs.
With more than one worker the columns are split into chunks that are
counted concurrently.
*/
func (sp *SpatialPooler) calculateOverlap(activeInputs []int) {
	if sp.Workers <= 1 {
		sp.connections.ComputeActivity(activeInputs, sp.overlaps)
		return
	}

	inputs := sp.denseInputs(activeInputs)
	chunk := (sp.numColumns + sp.Workers - 1) / sp.Workers
	p := pool.New().WithMaxGoroutines(sp.Workers)
	for start := 0; start < sp.numColumns; start += chunk {
		start := start
		end := mathutil.Min(start+chunk, sp.numColumns)
		p.Go(func() {
			for c := start; c < end; c++ {
				sp.overlaps[c] = sp.connections.SegmentActivity(c, inputs)
			}
		})
	}
	p.Wait()
}

//Number of winners for an area of the given size
func (sp *SpatialPooler) numActiveForArea(area int) int {
	return utils.RoundInt(sp.LocalAreaDensity * float64(area))
}

func (sp *SpatialPooler) useGlobalInhibition() bool {
	return sp.GlobalInhibition || sp.inhibitionRadius > utils.MaxSliceInt(sp.ColumnDimensions)
}

func (sp *SpatialPooler) inhibitColumns() []int {
	if sp.useGlobalInhibition() {
		return sp.inhibitColumnsGlobal()
	}
	return sp.inhibitColumnsLocal()
}

/*
 Picks the round(LocalAreaDensity * numColumns) eligible columns with the
highest boosted overlap. Equal boosted overlaps are ordered by column index,
lowest first.
*/
func (sp *SpatialPooler) inhibitColumnsGlobal() []int {
	candidates := make([]int, 0, sp.numColumns)
	for c, overlap := range sp.overlaps {
		if overlap >= sp.StimulusThreshold {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if sp.boostedOverlaps[a] != sp.boostedOverlaps[b] {
			return sp.boostedOverlaps[a] > sp.boostedOverlaps[b]
		}
		return a < b
	})

	numActive := mathutil.Min(sp.numActiveForArea(sp.numColumns), len(candidates))
	winners := append([]int(nil), candidates[:numActive]...)
	sort.Ints(winners)
	return winners
}

/*
 Columns are visited in ascending index order. An eligible column wins if
fewer than round(LocalAreaDensity * |neighborhood|) eligible neighbors beat
it, where a neighbor beats it by having a higher boosted overlap, or an equal
one, a lower index and having already won. A tied lower index column that
lost in its own neighborhood does not count, so a higher index column can
still win a neighborhood the lower one shares: with radius 1 and columns
7, 8, 9 all tied, 7 and 9 win and 8 loses.
*/
func (sp *SpatialPooler) inhibitColumnsLocal() []int {
	active := sp.activeScratch
	utils.FillSliceBool(active, false)
	neighborhoods := sp.inhibitionNeighborhoods()

	var winners []int
	for c := 0; c < sp.numColumns; c++ {
		if sp.overlaps[c] < sp.StimulusThreshold {
			continue
		}
		score := sp.boostedOverlaps[c]
		nb := neighborhoods[c]

		numBeaten := 0
		for _, n := range nb {
			if n == c || sp.overlaps[n] < sp.StimulusThreshold {
				continue
			}
			if sp.boostedOverlaps[n] > score {
				numBeaten++
			} else if sp.boostedOverlaps[n] == score && n < c && active[n] {
				numBeaten++
			}
		}

		if numBeaten < sp.numActiveForArea(len(nb)) {
			active[c] = true
			winners = append(winners, c)
		}
	}
	return winners
}

//Returns the column neighborhoods for the current inhibition radius,
//rebuilding them only when the radius has changed
func (sp *SpatialPooler) inhibitionNeighborhoods() [][]int {
	if sp.neighborhoods != nil && sp.neighborhoodsRadius == sp.inhibitionRadius {
		return sp.neighborhoods
	}
	sp.neighborhoods = make([][]int, sp.numColumns)
	for c := range sp.neighborhoods {
		sp.neighborhoods[c] = sp.columnNeighborhood(c, sp.inhibitionRadius)
	}
	sp.neighborhoodsRadius = sp.inhibitionRadius
	return sp.neighborhoods
}
