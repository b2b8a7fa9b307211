//
// Code related to initializing column permanences
//

package htm

import (
	"math"
	"math/rand"
)

/*
 Returns the initial permanences for the inputs of a potential pool, one per
entry of potential. With ConstantInitPermanence every synapse starts at
InitPermanence and rnd is not used. Otherwise each synapse is connected with
probability connectedPct: connected values lie slightly above
SynPermConnected, unconnected values slightly below it.
*/
func (sp *SpatialPooler) initPermanence(potential []int, connectedPct float64, rnd *rand.Rand) []float64 {
	perms := make([]float64, len(potential))
	for i := range potential {
		if sp.SpParams.ConstantInitPermanence {
			perms[i] = sp.SpParams.InitPermanence
			continue
		}
		if rnd.Float64() < connectedPct {
			perms[i] = sp.initPermConnected(rnd)
		} else {
			perms[i] = sp.initPermNonConnected(rnd)
		}
	}
	return perms
}

//Returns a permanence in [SynPermConnected, SynPermConnected + SynPermActiveInc/4)
func (sp *SpatialPooler) initPermConnected(rnd *rand.Rand) float64 {
	p := sp.SynPermConnected + rnd.Float64()*sp.SynPermActiveInc/4.0
	return math.Min(math.Max(p, sp.SynPermConnected), sp.SynPermMax)
}

//Returns a permanence strictly below SynPermConnected, no lower than
//SynPermConnected - SynPermInactiveDec/4
func (sp *SpatialPooler) initPermNonConnected(rnd *rand.Rand) float64 {
	p := sp.SynPermConnected - (1.0-rnd.Float64())*sp.SynPermInactiveDec/4.0
	if p >= sp.SynPermConnected {
		p = math.Nextafter(sp.SynPermConnected, math.Inf(-1))
	}
	return math.Max(p, sp.SynPermMin)
}
