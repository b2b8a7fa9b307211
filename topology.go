//
// Code related to mapping columns onto the input space
//

package htm

import (
	"math/rand"
	"sort"

	"github.com/cznic/mathutil"
	"github.com/htm-community/spatial-pooler/utils"
)

//Converts a flat index into coordinates, last dimension varying fastest
func coordinatesFromIndex(index int, dims []int) []int {
	coords := make([]int, len(dims))
	strides := utils.Strides(dims)
	for i, stride := range strides {
		coords[i] = index / stride
		index = index % stride
	}
	return coords
}

//Converts coordinates into a flat index
func indexFromCoordinates(coords []int, dims []int) int {
	return utils.DotInt(coords, utils.Strides(dims))
}

/*
 Returns the flat indices of every point within radius of center in each
dimension, clipped to the bounds of dims. The center is included.
*/
func neighborhood(center, radius int, dims []int) []int {
	centerCoords := coordinatesFromIndex(center, dims)
	ranges := make([][]int, len(dims))
	for i, dim := range dims {
		lo := mathutil.Max(centerCoords[i]-radius, 0)
		hi := mathutil.Min(centerCoords[i]+radius, dim-1)
		ranges[i] = make([]int, 0, hi-lo+1)
		for v := lo; v <= hi; v++ {
			ranges[i] = append(ranges[i], v)
		}
	}
	return ravelProduct(ranges, dims)
}

/*
 Like neighborhood, but points past the edge wrap around to the other side.
The span in each dimension is capped at the dimension size so no point is
returned twice.
*/
func wrappingNeighborhood(center, radius int, dims []int) []int {
	centerCoords := coordinatesFromIndex(center, dims)
	ranges := make([][]int, len(dims))
	for i, dim := range dims {
		begin := centerCoords[i] - radius
		span := mathutil.Min(2*radius+1, dim)
		ranges[i] = make([]int, span)
		for k := 0; k < span; k++ {
			ranges[i][k] = utils.Mod(begin+k, dim)
		}
	}
	return ravelProduct(ranges, dims)
}

func ravelProduct(ranges [][]int, dims []int) []int {
	points := utils.CartProductInt(ranges)
	result := make([]int, len(points))
	for i, p := range points {
		result[i] = indexFromCoordinates(p, dims)
	}
	sort.Ints(result)
	return result
}

//Maps a column to its input space center. Each column dimension is
//stretched over the matching input dimension.
func (sp *SpatialPooler) mapColumn(column int) int {
	colCoords := coordinatesFromIndex(column, sp.ColumnDimensions)
	inputCoords := make([]int, len(colCoords))
	for i, c := range colCoords {
		ratio := float64(sp.InputDimensions[i]) / float64(sp.ColumnDimensions[i])
		inputCoords[i] = mathutil.Min(int((float64(c)+0.5)*ratio), sp.InputDimensions[i]-1)
	}
	return indexFromCoordinates(inputCoords, sp.InputDimensions)
}

/*
 Maps a column to its potential pool: the inputs within potentialRadius of
the column's center, sampled down to round(PotentialPct * candidates) without
replacement using rnd. Returned indices are ascending.
*/
func (sp *SpatialPooler) mapPotential(column int, wrapAround bool, rnd *rand.Rand) []int {
	center := sp.mapColumn(column)

	var candidates []int
	if wrapAround {
		candidates = wrappingNeighborhood(center, sp.potentialRadius, sp.InputDimensions)
	} else {
		candidates = neighborhood(center, sp.potentialRadius, sp.InputDimensions)
	}

	numPotential := utils.RoundInt(float64(len(candidates)) * sp.PotentialPct)
	if numPotential >= len(candidates) {
		return candidates
	}

	order := rnd.Perm(len(candidates))
	result := make([]int, numPotential)
	for i := 0; i < numPotential; i++ {
		result[i] = candidates[order[i]]
	}
	sort.Ints(result)
	return result
}

//Neighborhood of column within the column space
func (sp *SpatialPooler) columnNeighborhood(column, radius int) []int {
	if sp.WrapAround {
		return wrappingNeighborhood(column, radius, sp.ColumnDimensions)
	}
	return neighborhood(column, radius, sp.ColumnDimensions)
}
