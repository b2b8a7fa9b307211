package htm

import (
	"fmt"
)

type Synapse struct {
	Segment     int
	Presynaptic int
	Permanence  float64
}

/*
 Connections holds the proximal connectivity the spatial pooler operates on.
Every segment belongs to a cell (a column for the pooler) and owns a bounded
list of synapses, each naming a presynaptic input and a permanence. Connected
synapse counts are kept per segment and updated on every permanence change.
*/
type Connections struct {
	NumInputs             int
	MaxSynapsesPerSegment int
	ConnectedPermanence   float64
	MinPermanence         float64
	MaxPermanence         float64

	segments []int
	synapses []Synapse

	synapsesForSegment     [][]int
	synapsesForPresynaptic [][]int
	connectedCounts        []int
}

//Create new connections for inputs in [0, numInputs)
func NewConnections(numInputs, maxSynapsesPerSegment int, connectedPermanence, minPermanence, maxPermanence float64) *Connections {
	c := new(Connections)
	c.NumInputs = numInputs
	c.MaxSynapsesPerSegment = maxSynapsesPerSegment
	c.ConnectedPermanence = connectedPermanence
	c.MinPermanence = minPermanence
	c.MaxPermanence = maxPermanence
	c.synapsesForPresynaptic = make([][]int, numInputs)
	return c
}

//Creates a segment on the specified cell, returns the segment index
func (c *Connections) CreateSegment(cell int) int {
	seg := len(c.segments)
	c.segments = append(c.segments, cell)
	c.synapsesForSegment = append(c.synapsesForSegment, nil)
	c.connectedCounts = append(c.connectedCounts, 0)
	return seg
}

//Creates a synapse on segment, returns the synapse index
func (c *Connections) CreateSynapse(segment int, presynaptic int, permanence float64) int {
	c.validateSegment(segment)
	if presynaptic < 0 || presynaptic >= c.NumInputs {
		panic(fmt.Sprintf("presynaptic input %v out of range [0, %v)", presynaptic, c.NumInputs))
	}
	if c.MaxSynapsesPerSegment > 0 && len(c.synapsesForSegment[segment]) >= c.MaxSynapsesPerSegment {
		panic(fmt.Sprintf("segment %v is full (%v synapses)", segment, c.MaxSynapsesPerSegment))
	}

	permanence = c.clamp(permanence)
	syn := len(c.synapses)
	c.synapses = append(c.synapses, Synapse{segment, presynaptic, permanence})
	c.synapsesForSegment[segment] = append(c.synapsesForSegment[segment], syn)
	c.synapsesForPresynaptic[presynaptic] = append(c.synapsesForPresynaptic[presynaptic], syn)
	if permanence >= c.ConnectedPermanence {
		c.connectedCounts[segment]++
	}
	return syn
}

func (c *Connections) NumSegments() int {
	return len(c.segments)
}

func (c *Connections) NumSynapses() int {
	return len(c.synapses)
}

//Returns the cell that owns segment
func (c *Connections) CellForSegment(segment int) int {
	c.validateSegment(segment)
	return c.segments[segment]
}

func (c *Connections) DataForSynapse(synapse int) Synapse {
	return c.synapses[synapse]
}

//Returns synapse indices of segment. The slice must not be modified.
func (c *Connections) SynapsesForSegment(segment int) []int {
	c.validateSegment(segment)
	return c.synapsesForSegment[segment]
}

//Returns the number of synapses on segment at or above the connected
//permanence
func (c *Connections) ConnectedCount(segment int) int {
	c.validateSegment(segment)
	return c.connectedCounts[segment]
}

//Sets the permanence of synapse, clamped to [MinPermanence, MaxPermanence]
func (c *Connections) UpdateSynapsePermanence(synapse int, permanence float64) {
	syn := &c.synapses[synapse]
	permanence = c.clamp(permanence)

	wasConnected := syn.Permanence >= c.ConnectedPermanence
	isConnected := permanence >= c.ConnectedPermanence
	syn.Permanence = permanence

	if wasConnected && !isConnected {
		c.connectedCounts[syn.Segment]--
	} else if !wasConnected && isConnected {
		c.connectedCounts[syn.Segment]++
	}
}

/*
 Raises every permanence on segment by increment until at least threshold
synapses are connected. The threshold is capped at the number of synapses on
the segment so the loop always terminates.
*/
func (c *Connections) RaisePermanencesToThreshold(segment int, increment float64, threshold int) {
	syns := c.SynapsesForSegment(segment)
	if threshold > len(syns) {
		threshold = len(syns)
	}
	if increment <= 0 {
		panic("increment must be > 0")
	}

	for c.connectedCounts[segment] < threshold {
		for _, syn := range syns {
			c.UpdateSynapsePermanence(syn, c.synapses[syn].Permanence+increment)
		}
	}
}

//Adds delta to every permanence on segment
func (c *Connections) BumpSegment(segment int, delta float64) {
	for _, syn := range c.SynapsesForSegment(segment) {
		c.UpdateSynapsePermanence(syn, c.synapses[syn].Permanence+delta)
	}
}

/*
 Hebbian update of one segment: synapses on active inputs are incremented by
increment, all others decremented by decrement. Results below trimThreshold
are set to MinPermanence.
*/
func (c *Connections) AdaptSegment(segment int, inputs []bool, increment, decrement, trimThreshold float64) {
	for _, syn := range c.SynapsesForSegment(segment) {
		perm := c.synapses[syn].Permanence
		if inputs[c.synapses[syn].Presynaptic] {
			perm += increment
		} else {
			perm -= decrement
		}
		if perm < trimThreshold {
			perm = c.MinPermanence
		}
		c.UpdateSynapsePermanence(syn, perm)
	}
}

/*
 Computes, for each segment, the number of connected synapses whose
presynaptic input is in activeInputs. Results are written into overlaps,
which must have one entry per segment.
*/
func (c *Connections) ComputeActivity(activeInputs []int, overlaps []int) {
	if len(overlaps) != len(c.segments) {
		panic("overlaps length does not match segment count")
	}
	for i := range overlaps {
		overlaps[i] = 0
	}
	for _, input := range activeInputs {
		if input < 0 || input >= c.NumInputs {
			panic(fmt.Sprintf("active input %v out of range [0, %v)", input, c.NumInputs))
		}
		for _, syn := range c.synapsesForPresynaptic[input] {
			data := c.synapses[syn]
			if data.Permanence >= c.ConnectedPermanence {
				overlaps[data.Segment]++
			}
		}
	}
}

//Number of connected synapses on segment whose input is on. Safe to call
//concurrently for distinct segments.
func (c *Connections) SegmentActivity(segment int, inputs []bool) int {
	activity := 0
	for _, syn := range c.synapsesForSegment[segment] {
		data := c.synapses[syn]
		if data.Permanence >= c.ConnectedPermanence && inputs[data.Presynaptic] {
			activity++
		}
	}
	return activity
}

func (c *Connections) clamp(permanence float64) float64 {
	if permanence < c.MinPermanence {
		return c.MinPermanence
	}
	if permanence > c.MaxPermanence {
		return c.MaxPermanence
	}
	return permanence
}

func (c *Connections) validateSegment(segment int) {
	if segment < 0 || segment >= len(c.segments) {
		panic(fmt.Sprintf("segment %v out of range", segment))
	}
}
