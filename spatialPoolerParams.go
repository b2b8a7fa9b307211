package htm

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidParams is matched by every validation failure returned from
// SpParams.Validate and NewSpatialPooler.
var ErrInvalidParams = errors.New("invalid spatial pooler params")

// ParamError names the offending parameter.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParams
}

func paramErr(field, format string, args ...interface{}) error {
	return &ParamError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

/*
Params for initializing the spatial pooler. Every recognized option lives
here; NewSpParams fills in the defaults and Validate is run once by
NewSpatialPooler.
*/
type SpParams struct {
	//Dimensions of the input vector. Format is [height, width, depth, ...]
	//with the last dimension varying fastest.
	InputDimensions []int `yaml:"input_dimensions" json:"input_dimensions"`
	//Dimensions of the columns in the region, same rank as InputDimensions.
	ColumnDimensions []int `yaml:"column_dimensions" json:"column_dimensions"`
	//Extent of the input that each column can potentially be connected to.
	//Clamped to the number of inputs.
	PotentialRadius int `yaml:"potential_radius" json:"potential_radius"`
	//Fraction of the inputs within a column's potential radius that the
	//column may connect to.
	PotentialPct float64 `yaml:"potential_pct" json:"potential_pct"`
	//If true, winners are selected across the whole region rather than
	//within each column's inhibition neighborhood.
	GlobalInhibition bool `yaml:"global_inhibition" json:"global_inhibition"`
	//Desired fraction of columns active within an inhibition area.
	LocalAreaDensity float64 `yaml:"local_area_density" json:"local_area_density"`
	//Upper bound accepted for LocalAreaDensity.
	MaxLocalAreaDensity float64 `yaml:"max_local_area_density" json:"max_local_area_density"`
	//Minimum number of connected synapses on active inputs for a column to
	//be considered during inhibition.
	StimulusThreshold int `yaml:"stimulus_threshold" json:"stimulus_threshold"`
	//Amount by which an inactive synapse is decremented in each round.
	SynPermInactiveDec float64 `yaml:"syn_perm_inactive_dec" json:"syn_perm_inactive_dec"`
	//Amount by which an active synapse is incremented in each round.
	SynPermActiveInc float64 `yaml:"syn_perm_active_inc" json:"syn_perm_active_inc"`
	//Permanence at or above which a synapse is connected.
	SynPermConnected float64 `yaml:"syn_perm_connected" json:"syn_perm_connected"`
	//Step used when raising a column's permanences toward the connected
	//threshold and when bumping weak columns.
	SynPermBelowStimulusInc float64 `yaml:"syn_perm_below_stimulus_inc" json:"syn_perm_below_stimulus_inc"`
	SynPermMin              float64 `yaml:"syn_perm_min" json:"syn_perm_min"`
	SynPermMax              float64 `yaml:"syn_perm_max" json:"syn_perm_max"`
	//Learned permanences below this value are set to SynPermMin.
	SynPermTrimThreshold float64 `yaml:"syn_perm_trim_threshold" json:"syn_perm_trim_threshold"`
	//Permanence given to every potential synapse when
	//ConstantInitPermanence is set.
	InitPermanence         float64 `yaml:"init_permanence" json:"init_permanence"`
	ConstantInitPermanence bool    `yaml:"constant_init_permanence" json:"constant_init_permanence"`
	//Probability that a potential synapse starts connected in randomized
	//initialization.
	InitConnectedPct float64 `yaml:"init_connected_pct" json:"init_connected_pct"`
	//Fraction of the neighborhood's maximum active duty cycle below which
	//a column's permanences are bumped up.
	MinPctOverlapDutyCycles float64 `yaml:"min_pct_overlap_duty_cycles" json:"min_pct_overlap_duty_cycles"`
	//Period used to calculate duty cycles.
	DutyCyclePeriod int `yaml:"duty_cycle_period" json:"duty_cycle_period"`
	//Number of learning iterations between inhibition radius and minimum
	//duty cycle updates.
	UpdatePeriod int `yaml:"update_period" json:"update_period"`
	//Strength of boosting, 0 disables it.
	BoostStrength float64 `yaml:"boost_strength" json:"boost_strength"`
	Seed          int64   `yaml:"seed" json:"seed"`
	SpVerbosity   int     `yaml:"sp_verbosity" json:"sp_verbosity"`
	//Treat the input and column spaces as toroidal.
	WrapAround bool `yaml:"wrap_around" json:"wrap_around"`
	//Goroutines used for the overlap computation, values <= 1 run serially.
	Workers int `yaml:"workers" json:"workers"`
}

//Create default spatial pooler parameters
func NewSpParams() SpParams {
	p := SpParams{}
	p.InputDimensions = []int{32, 32}
	p.ColumnDimensions = []int{64, 64}
	p.PotentialRadius = 16
	p.PotentialPct = 0.5
	p.GlobalInhibition = true
	p.LocalAreaDensity = 0.02
	p.MaxLocalAreaDensity = 0.5
	p.StimulusThreshold = 0
	p.SynPermInactiveDec = 0.008
	p.SynPermActiveInc = 0.05
	p.SynPermConnected = 0.10
	p.SynPermBelowStimulusInc = p.SynPermConnected / 10.0
	p.SynPermMin = 0.0
	p.SynPermMax = 1.0
	p.SynPermTrimThreshold = p.SynPermActiveInc / 2.0
	p.InitPermanence = 0.21
	p.ConstantInitPermanence = false
	p.InitConnectedPct = 0.5
	p.MinPctOverlapDutyCycles = 0.001
	p.DutyCyclePeriod = 1000
	p.UpdatePeriod = 50
	p.BoostStrength = 0.0
	p.Seed = 1
	p.SpVerbosity = 0
	p.WrapAround = true
	p.Workers = 1
	return p
}

// Validate checks every parameter and returns all failures combined.
func (p SpParams) Validate() error {
	var err error

	err = multierr.Append(err, validateDimensions("InputDimensions", p.InputDimensions))
	err = multierr.Append(err, validateDimensions("ColumnDimensions", p.ColumnDimensions))
	if len(p.InputDimensions) > 0 && len(p.ColumnDimensions) > 0 &&
		len(p.InputDimensions) != len(p.ColumnDimensions) {
		err = multierr.Append(err, paramErr("ColumnDimensions",
			"rank %d does not match input rank %d", len(p.ColumnDimensions), len(p.InputDimensions)))
	}

	if p.PotentialRadius < 0 {
		err = multierr.Append(err, paramErr("PotentialRadius", "must be >= 0, got %d", p.PotentialRadius))
	}
	if !(p.PotentialPct > 0 && p.PotentialPct <= 1) {
		err = multierr.Append(err, paramErr("PotentialPct", "must be in (0, 1], got %v", p.PotentialPct))
	}
	if !(p.MaxLocalAreaDensity > 0 && p.MaxLocalAreaDensity <= 1) {
		err = multierr.Append(err, paramErr("MaxLocalAreaDensity", "must be in (0, 1], got %v", p.MaxLocalAreaDensity))
	}
	if !(p.LocalAreaDensity > 0 && p.LocalAreaDensity <= p.MaxLocalAreaDensity) {
		err = multierr.Append(err, paramErr("LocalAreaDensity",
			"must be in (0, %v], got %v", p.MaxLocalAreaDensity, p.LocalAreaDensity))
	}
	if p.StimulusThreshold < 0 {
		err = multierr.Append(err, paramErr("StimulusThreshold", "must be >= 0, got %d", p.StimulusThreshold))
	}

	if p.SynPermActiveInc < 0 {
		err = multierr.Append(err, paramErr("SynPermActiveInc", "must be >= 0, got %v", p.SynPermActiveInc))
	}
	if p.SynPermInactiveDec < 0 {
		err = multierr.Append(err, paramErr("SynPermInactiveDec", "must be >= 0, got %v", p.SynPermInactiveDec))
	}
	if p.SynPermBelowStimulusInc <= 0 {
		err = multierr.Append(err, paramErr("SynPermBelowStimulusInc", "must be > 0, got %v", p.SynPermBelowStimulusInc))
	}
	if !(p.SynPermMin >= 0 && p.SynPermMin < p.SynPermMax && p.SynPermMax <= 1) {
		err = multierr.Append(err, paramErr("SynPermMax",
			"require 0 <= SynPermMin < SynPermMax <= 1, got [%v, %v]", p.SynPermMin, p.SynPermMax))
	}
	if !(p.SynPermConnected > p.SynPermMin && p.SynPermConnected <= p.SynPermMax) {
		err = multierr.Append(err, paramErr("SynPermConnected",
			"must be in (%v, %v], got %v", p.SynPermMin, p.SynPermMax, p.SynPermConnected))
	}
	if !(p.SynPermTrimThreshold >= 0 && p.SynPermTrimThreshold < p.SynPermConnected) {
		err = multierr.Append(err, paramErr("SynPermTrimThreshold",
			"must be in [0, %v), got %v", p.SynPermConnected, p.SynPermTrimThreshold))
	}
	if !(p.InitPermanence >= p.SynPermMin && p.InitPermanence <= p.SynPermMax) {
		err = multierr.Append(err, paramErr("InitPermanence",
			"must be in [%v, %v], got %v", p.SynPermMin, p.SynPermMax, p.InitPermanence))
	}
	if !(p.InitConnectedPct >= 0 && p.InitConnectedPct <= 1) {
		err = multierr.Append(err, paramErr("InitConnectedPct", "must be in [0, 1], got %v", p.InitConnectedPct))
	}
	if !(p.MinPctOverlapDutyCycles >= 0 && p.MinPctOverlapDutyCycles <= 1) {
		err = multierr.Append(err, paramErr("MinPctOverlapDutyCycles",
			"must be in [0, 1], got %v", p.MinPctOverlapDutyCycles))
	}
	if p.DutyCyclePeriod <= 0 {
		err = multierr.Append(err, paramErr("DutyCyclePeriod", "must be > 0, got %d", p.DutyCyclePeriod))
	}
	if p.UpdatePeriod <= 0 {
		err = multierr.Append(err, paramErr("UpdatePeriod", "must be > 0, got %d", p.UpdatePeriod))
	}
	if p.BoostStrength < 0 {
		err = multierr.Append(err, paramErr("BoostStrength", "must be >= 0, got %v", p.BoostStrength))
	}
	if p.Workers < 0 {
		err = multierr.Append(err, paramErr("Workers", "must be >= 0, got %d", p.Workers))
	}

	return err
}

func validateDimensions(field string, dims []int) error {
	if len(dims) == 0 {
		return paramErr(field, "at least one dimension is required")
	}
	for i, d := range dims {
		if d <= 0 {
			return paramErr(field, "dimension %d must be > 0, got %d", i, d)
		}
	}
	return nil
}
