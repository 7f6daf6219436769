package focalplane

// PositionerConfig holds the physical constants of a fiber positioner. All
// lengths are mm. R1 and R2 are the two arm-segment lengths; Ei and Eo are
// the inner and outer clear rotation envelopes; FerruleRadius is the radius
// of the fiber ferrule.
type PositionerConfig struct {
	R1            float64 `yaml:"r1"`
	R2            float64 `yaml:"r2"`
	Ei            float64 `yaml:"ei"`
	Eo            float64 `yaml:"eo"`
	FerruleRadius float64 `yaml:"ferrule_radius"`
}

// DefaultPositioner returns the nominal positioner geometry.
func DefaultPositioner() PositionerConfig {
	return PositionerConfig{
		R1:            3.000,
		R2:            3.000,
		Ei:            6.800,
		Eo:            9.990,
		FerruleRadius: 1.250 / 2.0,
	}
}

// PatrolRadius is the maximum reach of the positioner, the sum of its two
// arm-segment lengths.
func (p PositionerConfig) PatrolRadius() float64 {
	return p.R1 + p.R2
}
