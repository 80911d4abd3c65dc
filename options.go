package citygen

// GenerateOptions configures a Generate call beyond its required size and
// seed. The zero value is the default configuration. This is an
// extension point, not a requirement: every field has a sensible
// default, following the teacher's CityConfig/BuilderConfig pattern of
// plain struct fields built up by the caller rather than parsed from a
// file.
type GenerateOptions struct {
	// MaxAttempts bounds the reseed-and-retry loop. Zero means the
	// default of 10.
	MaxAttempts int

	// MaxGates bounds how many gates a curtain wall may be given. Zero
	// means the default of 3.
	MaxGates int

	// MinTowerDistance is the minimum spacing, in mesh units, between two
	// towers on the curtain wall. Zero means the default of 20.
	MinTowerDistance float64

	// WallSmoothing is the corner-rounding fraction applied to the
	// curtain wall's circumference. Zero means the default of 0.25.
	WallSmoothing float64
}

const (
	defaultMaxAttempts      = 10
	defaultMaxGates         = 3
	defaultMinTowerDistance = 20.0
	defaultWallSmoothing    = 0.25
)

func (o GenerateOptions) withDefaults() GenerateOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.MaxGates <= 0 {
		o.MaxGates = defaultMaxGates
	}
	if o.MinTowerDistance <= 0 {
		o.MinTowerDistance = defaultMinTowerDistance
	}
	if o.WallSmoothing <= 0 {
		o.WallSmoothing = defaultWallSmoothing
	}
	return o
}
